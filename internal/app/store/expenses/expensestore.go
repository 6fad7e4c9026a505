package expensestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Expense statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Store manages the expenses and rejected_expenses collections.
// Rejected expenses move between collections rather than flipping a
// flag, so the live collection only ever holds pending and approved
// vouchers.
type Store struct {
	live     *mongo.Collection
	rejected *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		live:     db.Collection("expenses"),
		rejected: db.Collection("rejected_expenses"),
	}
}

var (
	// ErrNotFound is returned when the expense does not exist in the
	// live collection.
	ErrNotFound = errors.New("expense not found")
)

// Create inserts a pending expense.
func (s *Store) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	e.ID = primitive.NewObjectID()
	e.Person = normalize.Name(e.Person)
	e.PersonCI = text.Fold(e.Person)
	e.Status = StatusPending
	e.CreatedAt = time.Now().UTC()

	if _, err := s.live.InsertOne(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// CreateMany inserts a batch of pending expenses, as produced by a
// spreadsheet import. All rows get the same CreatedBy and timestamp.
func (s *Store) CreateMany(ctx context.Context, rows []models.Expense, createdBy string) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(rows))
	for _, e := range rows {
		e.ID = primitive.NewObjectID()
		e.Person = normalize.Name(e.Person)
		e.PersonCI = text.Fold(e.Person)
		e.Status = StatusPending
		e.CreatedBy = createdBy
		e.CreatedAt = now
		docs = append(docs, e)
	}
	_, err := s.live.InsertMany(ctx, docs)
	return err
}

// GetByID loads one live expense.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Expense, error) {
	var e models.Expense
	if err := s.live.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListFilter narrows List results. Zero fields are ignored; From and
// To are ISO dates bounding an inclusive range.
type ListFilter struct {
	Person string
	Site   string
	Status string
	From   string
	To     string
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Person != "" {
		q["person_ci"] = text.Fold(f.Person)
	}
	if f.Site != "" {
		q["site_name"] = f.Site
	}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.From != "" || f.To != "" {
		r := bson.M{}
		if f.From != "" {
			r["$gte"] = f.From
		}
		if f.To != "" {
			r["$lte"] = f.To
		}
		q["date"] = r
	}
	return q
}

// List returns live expenses matching the filter, oldest date first.
// ISO date strings sort chronologically.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.live.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Expense
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Approve marks a live expense approved, recording the admin remark.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, adminRemark string) (*models.Expense, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Expense
	err := s.live.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": StatusApproved, "admin_remark": adminRemark}},
		opts,
	).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Reject moves an expense from the live collection into
// rejected_expenses, stamping RejectedAt and the admin remark. The
// insert happens before the delete so a crash between the two leaves a
// duplicate rather than a lost voucher.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID, adminRemark string) (*models.Expense, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e.Status = "rejected"
	e.AdminRemark = adminRemark
	e.RejectedAt = &now

	if _, err := s.rejected.InsertOne(ctx, e); err != nil {
		return nil, err
	}
	if _, err := s.live.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListRejected returns rejected expenses, newest rejection first.
func (s *Store) ListRejected(ctx context.Context, f ListFilter) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rejected_at", Value: -1}})
	cur, err := s.rejected.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Expense
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Purge deletes live expenses with dates inside [from, to] inclusive,
// optionally restricted to one site. Returns how many were removed.
func (s *Store) Purge(ctx context.Context, from, to, site string) (int64, error) {
	q := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	if site != "" {
		q["site_name"] = site
	}
	res, err := s.live.DeleteMany(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistinctPersons returns every person with at least one live expense.
func (s *Store) DistinctPersons(ctx context.Context) ([]string, error) {
	raw, err := s.live.Distinct(ctx, "person", bson.M{})
	if err != nil {
		return nil, err
	}
	persons := make([]string, 0, len(raw))
	for _, v := range raw {
		if p, ok := v.(string); ok && p != "" {
			persons = append(persons, p)
		}
	}
	return persons, nil
}
