package attendancestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Attendance statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

var (
	// ErrNotFound is returned when the record does not exist.
	ErrNotFound = errors.New("attendance record not found")
	// ErrAlreadyMarked is returned when a person already punched in on
	// the same date.
	ErrAlreadyMarked = errors.New("attendance already marked for this date")
)

// Mark inserts one punch-in. A second punch for the same person and
// date is refused; punches are one per day.
func (s *Store) Mark(ctx context.Context, a models.Attendance) (models.Attendance, error) {
	a.PersonName = normalize.Name(a.PersonName)
	a.Category = normalize.Category(a.Category)

	exists := s.c.FindOne(ctx, bson.M{
		"person_name": a.PersonName,
		"date":        a.Date,
	})
	if exists.Err() == nil {
		return models.Attendance{}, ErrAlreadyMarked
	}
	if exists.Err() != mongo.ErrNoDocuments {
		return models.Attendance{}, exists.Err()
	}

	a.ID = primitive.NewObjectID()
	a.Status = StatusPending
	a.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Attendance{}, err
	}
	return a, nil
}

// ListFilter narrows List results. Zero fields are ignored.
type ListFilter struct {
	Person string
	Site   string
	Status string
	From   string
	To     string
}

// List returns attendance records matching the filter, oldest date
// first, then by time in.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Attendance, error) {
	q := bson.M{}
	if f.Person != "" {
		q["person_name"] = normalize.Name(f.Person)
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

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time_in", Value: 1},
	})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Attendance
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decide sets one record's status to approved or rejected.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, approve bool) (*models.Attendance, error) {
	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Attendance
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
