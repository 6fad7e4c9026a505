package sitestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	return &Store{c: db.Collection("sites")}
}

var (
	// ErrDuplicateName is returned when a site with the same folded
	// name already exists.
	ErrDuplicateName = errors.New("a site with this name already exists")
	// ErrNotFound is returned when the site does not exist.
	ErrNotFound = errors.New("site not found")
)

// Create inserts a new site. Uniqueness is enforced by the folded-name
// index.
func (s *Store) Create(ctx context.Context, name, createdBy string) (models.Site, error) {
	site := models.Site{
		ID:        primitive.NewObjectID(),
		Name:      normalize.Name(name),
		NameCI:    text.Fold(name),
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, site); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Site{}, ErrDuplicateName
		}
		return models.Site{}, err
	}
	return site, nil
}

// List returns all sites ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Site, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sites []models.Site
	if err := cur.All(ctx, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// GetByID loads one site.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Site, error) {
	var site models.Site
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&site); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

// GetByName loads one site by folded name.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Site, error) {
	var site models.Site
	if err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(name)}).Decode(&site); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

// Delete removes a site record. Members keep their interval history;
// a deleted site simply stops appearing in the pick list.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
