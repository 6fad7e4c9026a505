// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLogout                   = "logout"
)

// Admin event types
const (
	EventRegistrationSubmitted = "registration_submitted"
	EventRegistrationApproved  = "registration_approved"
	EventRegistrationRejected  = "registration_rejected"
	EventMemberAssigned        = "member_assigned"
	EventMemberUnassigned      = "member_unassigned"
	EventMemberRelieved        = "member_relieved"
	EventSiteCreated           = "site_created"
	EventSiteDeleted           = "site_deleted"
	EventExpenseDecided        = "expense_decided"
	EventExpensesPurged        = "expenses_purged"
	EventAttendanceDecided     = "attendance_decided"
	EventPaymentRecorded       = "payment_recorded"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Subject is the affected person or record; Actor is who acted.
	Subject string              `bson:"subject,omitempty"`
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty"`

	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates an audit Store on the audit_events collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log inserts one event, stamping Timestamp if unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// QueryFilter narrows Recent results. Zero fields are ignored.
type QueryFilter struct {
	Category  string
	EventType string
	Subject   string
	Since     *time.Time
	Limit     int64
}

// Recent returns events newest first, capped at filter.Limit (default 100).
func (s *Store) Recent(ctx context.Context, f QueryFilter) ([]Event, error) {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.Subject != "" {
		q["subject"] = f.Subject
	}
	if f.Since != nil {
		q["timestamp"] = bson.M{"$gte": *f.Since}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
