package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateSite inserts a test site.
func (f *Fixtures) CreateSite(ctx context.Context, name string) models.Site {
	f.t.Helper()

	site := models.Site{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedBy: "fixtures",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("sites").InsertOne(ctx, site); err != nil {
		f.t.Fatalf("create test site: %v", err)
	}
	return site
}

// CreateMember inserts a member with the given status.
func (f *Fixtures) CreateMember(ctx context.Context, personName, category, status string) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:           primitive.NewObjectID(),
		PersonName:   personName,
		PersonNameCI: text.Fold(personName),
		Category:     category,
		Status:       status,
		Sites:        []string{},
		Teams:        []string{},
		SiteHistory:  []models.SiteInterval{},
		SubmittedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test member: %v", err)
	}
	return m
}

// CreatePendingRegistration inserts a pending registration with an
// email and password hash, as the submit endpoint would.
func (f *Fixtures) CreatePendingRegistration(ctx context.Context, personName, category, email, passwordHash string) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:           primitive.NewObjectID(),
		PersonName:   personName,
		PersonNameCI: text.Fold(personName),
		Category:     category,
		Status:       models.StatusPending,
		Email:        email,
		PasswordHash: passwordHash,
		Sites:        []string{},
		Teams:        []string{},
		SiteHistory:  []models.SiteInterval{},
		SubmittedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test registration: %v", err)
	}
	return m
}

// CreateUser inserts a login account.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Email:      email,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return u
}

// CreateExpense inserts a pending expense.
func (f *Fixtures) CreateExpense(ctx context.Context, person, site, date, amount string) models.Expense {
	f.t.Helper()

	e := models.Expense{
		ID:        primitive.NewObjectID(),
		Date:      date,
		Person:    person,
		PersonCI:  text.Fold(person),
		SiteName:  site,
		Category:  "General",
		PaidTo:    "Vendor",
		Amount:    amount,
		Status:    "pending",
		CreatedBy: person,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("expenses").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("create test expense: %v", err)
	}
	return e
}

// CreatePayment inserts a payment.
func (f *Fixtures) CreatePayment(ctx context.Context, person, date, amount string) models.Payment {
	f.t.Helper()

	p := models.Payment{
		ID:        primitive.NewObjectID(),
		Person:    person,
		PersonCI:  text.Fold(person),
		Date:      date,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("create test payment: %v", err)
	}
	return p
}

// CreateAttendance inserts an attendance record with the given status.
func (f *Fixtures) CreateAttendance(ctx context.Context, person, site, date, status string) models.Attendance {
	f.t.Helper()

	a := models.Attendance{
		ID:         primitive.NewObjectID(),
		PersonName: person,
		Category:   models.CategorySite,
		SiteName:   site,
		Date:       date,
		TimeIn:     "09:00",
		Status:     status,
		MarkedBy:   person,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("attendance").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("create test attendance: %v", err)
	}
	return a
}
