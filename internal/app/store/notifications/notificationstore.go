package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// ErrNotFound is returned when the notification does not exist.
var ErrNotFound = errors.New("notification not found")

// Create inserts a notification for a user. Date is stamped here.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.Date = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ListByUser returns a user's notifications, newest first. When
// unreadOnly is set, read ones are excluded.
func (s *Store) ListByUser(ctx context.Context, user string, unreadOnly bool) ([]models.Notification, error) {
	q := bson.M{"user": user}
	if unreadOnly {
		q["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags one of the user's notifications as read. The user
// filter keeps one member from touching another's notifications.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID, user string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user": user},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCount returns how many unread notifications a user has.
func (s *Store) UnreadCount(ctx context.Context, user string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user": user, "read": false})
}
