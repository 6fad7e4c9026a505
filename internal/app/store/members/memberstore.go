package memberstore

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"time"

	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/domain/assignment"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

var (
	// ErrNotFound is returned when the member does not exist.
	ErrNotFound = errors.New("member not found")
	// ErrAlreadyDecided is returned when deciding a registration that
	// is no longer pending. Decisions are one-way.
	ErrAlreadyDecided = errors.New("registration has already been decided")
	// ErrNotApproved is returned for operations that require an
	// approved member (assignment, relieve).
	ErrNotApproved = errors.New("member is not approved")

	errBadCategory = errors.New(`category must be "Head Office" or "Site"`)
)

// Create inserts a pending registration. Password hashing and document
// uploads happen in the handler; the store normalizes names and stamps
// the submission time.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.PersonName = normalize.Name(m.PersonName)
	m.PersonNameCI = text.Fold(m.PersonName)
	m.Category = normalize.Category(m.Category)
	m.Email = normalize.Email(m.Email)
	m.Status = models.StatusPending
	m.SubmittedAt = time.Now().UTC()

	switch m.Category {
	case models.CategoryHeadOffice, models.CategorySite:
	default:
		return models.Member{}, errBadCategory
	}
	if m.Sites == nil {
		m.Sites = []string{}
	}
	if m.Teams == nil {
		m.Teams = []string{}
	}
	if m.SiteHistory == nil {
		m.SiteHistory = []models.SiteInterval{}
	}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// GetByID loads one member.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByName loads one member by folded person name.
func (s *Store) GetByName(ctx context.Context, personName string) (*models.Member, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"person_name_ci": text.Fold(personName)}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListFilter narrows List results. Zero fields are ignored.
type ListFilter struct {
	Status   string
	Category string
	Site     string
	// NameContains matches a folded substring of the person name.
	NameContains string
}

// List returns members matching the filter, ordered by person name.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Member, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.Category != "" {
		q["category"] = normalize.Category(f.Category)
	}
	if f.Site != "" {
		q["sites"] = f.Site
	}
	if f.NameContains != "" {
		q["person_name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.NameContains))}
	}

	opts := options.Find().SetSort(bson.D{{Key: "person_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Decide records an approval or rejection on a pending registration.
// The filter includes status=pending so a second decision matches
// nothing and returns ErrAlreadyDecided.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, approve bool, decidedBy, remark string) (*models.Member, error) {
	status := models.StatusRejected
	if approve {
		status = models.StatusApproved
	}
	now := time.Now().UTC()

	set := bson.M{
		"status":          status,
		"decided_at":      now,
		"decided_by":      decidedBy,
		"decision_remark": remark,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Member
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": set},
		opts,
	).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Either the member is missing or it was decided already.
			if _, getErr := s.GetByID(ctx, id); getErr == nil {
				return nil, ErrAlreadyDecided
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// SetEmployeeID stamps the generated employee identifier.
func (s *Store) SetEmployeeID(ctx context.Context, id primitive.ObjectID, employeeID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"employee_id": employeeID}})
	return err
}

// ClearPasswordHash removes the captured hash once the login account
// has been provisioned.
func (s *Store) ClearPasswordHash(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$unset": bson.M{"password_hash": ""}})
	return err
}

// Assign moves an approved member to a site, applying the assignment
// policy to the interval history. teams replaces the member's team
// list. Returns the updated member and the interval changes.
func (s *Store) Assign(ctx context.Context, id primitive.ObjectID, site string, teams []string, assignedBy string, autoUnassign bool) (*models.Member, assignment.Change, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, assignment.Change{}, err
	}
	if m.Status != models.StatusApproved {
		return nil, assignment.Change{}, ErrNotApproved
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	history, change, err := assignment.Assign(m.SiteHistory, []string{site}, assignedBy, today, autoUnassign)
	if err != nil {
		return nil, assignment.Change{}, err
	}

	if teams == nil {
		teams = []string{}
	}
	for i, t := range teams {
		teams[i] = normalize.Team(t)
	}

	set := bson.M{
		"site_history": history,
		"sites":        []string{site},
		"teams":        teams,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Member
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, assignment.Change{}, err
	}
	return &updated, change, nil
}

// Unassign closes all open intervals and clears sites and teams.
// Returns the updated member and the intervals that were closed.
func (s *Store) Unassign(ctx context.Context, id primitive.ObjectID) (*models.Member, assignment.Change, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, assignment.Change{}, err
	}
	if m.Status != models.StatusApproved {
		return nil, assignment.Change{}, ErrNotApproved
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	history, change := assignment.Unassign(m.SiteHistory, today)

	set := bson.M{
		"site_history": history,
		"sites":        []string{},
		"teams":        []string{},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Member
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, assignment.Change{}, err
	}
	return &updated, change, nil
}

// Relieve marks an approved member as relieved, closing any open site
// intervals first.
func (s *Store) Relieve(ctx context.Context, id primitive.ObjectID) (*models.Member, assignment.Change, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, assignment.Change{}, err
	}
	if m.Status != models.StatusApproved {
		return nil, assignment.Change{}, ErrNotApproved
	}

	now := time.Now().UTC()
	history, change := assignment.Unassign(m.SiteHistory, now.Truncate(24*time.Hour))

	set := bson.M{
		"status":       models.StatusRelieved,
		"relieved_at":  now,
		"site_history": history,
		"sites":        []string{},
		"teams":        []string{},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Member
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, assignment.Change{}, err
	}
	return &updated, change, nil
}

// SiteHistory returns the member's interval list, oldest first.
func (s *Store) SiteHistory(ctx context.Context, id primitive.ObjectID) ([]models.SiteInterval, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.SiteHistory, nil
}

// DistinctTeams returns every team name in use across members, sorted.
func (s *Store) DistinctTeams(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "teams", bson.M{})
	if err != nil {
		return nil, err
	}
	teams := make([]string, 0, len(raw))
	for _, v := range raw {
		if t, ok := v.(string); ok && t != "" {
			teams = append(teams, t)
		}
	}
	sort.Strings(teams)
	return teams, nil
}
