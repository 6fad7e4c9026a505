package counterstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store hands out monotonically increasing sequence numbers. Each
// counter is one document keyed by name; the increment happens inside
// findOneAndUpdate, so two concurrent approvals never see the same
// value.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("counters")}
}

// counterEmployee backs EmployeeID generation.
const counterEmployee = "employee_id"

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Next atomically increments the named counter and returns the new
// value. The counter document is created on first use.
func (s *Store) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("increment counter %q: %w", name, err)
	}
	return doc.Seq, nil
}

// NextEmployeeID returns the next employee identifier, "EMP-1001",
// "EMP-1002", and so on. The sequence starts above 1000 so IDs are a
// uniform width in exports.
func (s *Store) NextEmployeeID(ctx context.Context) (string, error) {
	n, err := s.Next(ctx, counterEmployee)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP-%d", 1000+n), nil
}
