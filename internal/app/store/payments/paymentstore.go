package paymentstore

import (
	"context"
	"time"

	"github.com/dalemusser/crewhub/internal/app/system/normalize"
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
	return &Store{c: db.Collection("payments")}
}

// Create records a payment to a person.
func (s *Store) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	p.ID = primitive.NewObjectID()
	p.Person = normalize.Name(p.Person)
	p.PersonCI = text.Fold(p.Person)
	p.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// ListByPerson returns one person's payments inside [from, to], oldest
// first. Empty bounds are open.
func (s *Store) ListByPerson(ctx context.Context, person, from, to string) ([]models.Payment, error) {
	q := bson.M{"person_ci": text.Fold(person)}
	if from != "" || to != "" {
		r := bson.M{}
		if from != "" {
			r["$gte"] = from
		}
		if to != "" {
			r["$lte"] = to
		}
		q["date"] = r
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Payment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all payments, oldest first.
func (s *Store) List(ctx context.Context) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Payment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
