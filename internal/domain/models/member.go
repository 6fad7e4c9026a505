// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member categories.
const (
	CategoryHeadOffice = "Head Office"
	CategorySite       = "Site"
)

// Member statuses. Decisions are one-way: pending → approved|rejected,
// and an approved member may later be relieved.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusRelieved = "relieved"
)

// Member is a registration that, once approved, is the member record itself.
// Site assignment history lives on the member as an ordered interval list;
// the assignment package owns its invariants.
type Member struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonName   string             `bson:"person_name" json:"person_name"`
	PersonNameCI string             `bson:"person_name_ci" json:"-"`  // lowercase, diacritics-stripped
	Category     string             `bson:"category" json:"category"` // "Head Office" | "Site"
	Status       string             `bson:"status" json:"status"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`

	// Password captured at submission, hashed immediately. Used only to
	// provision the login account when a Head Office registration is approved.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	// Sites is kept as a slice for historical reasons but assignment always
	// collapses it to a single element (see assignment.Assign).
	Sites []string `bson:"sites" json:"sites"`
	Teams []string `bson:"teams" json:"teams"`

	// Documents maps a document kind ("photo", "id_proof", ...) to the
	// object-storage URL it was uploaded to.
	Documents map[string]string `bson:"documents,omitempty" json:"documents,omitempty"`

	SiteHistory []SiteInterval `bson:"site_history" json:"site_history"`

	// EmployeeID is assigned only for Head Office registrations, from the
	// atomic counters collection.
	EmployeeID string `bson:"employee_id,omitempty" json:"employee_id,omitempty"`

	SubmittedAt    time.Time  `bson:"submitted_at" json:"submitted_at"`
	DecidedAt      *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedBy      string     `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecisionRemark string     `bson:"decision_remark,omitempty" json:"decision_remark,omitempty"`
	RelievedAt     *time.Time `bson:"relieved_at,omitempty" json:"relieved_at,omitempty"`
}

// SiteInterval is one date-ranged site assignment. To == nil marks the
// currently active ("open") interval.
type SiteInterval struct {
	Site       string     `bson:"site" json:"site"`
	From       time.Time  `bson:"from" json:"from"`
	To         *time.Time `bson:"to" json:"to"`
	AssignedBy string     `bson:"assigned_by" json:"assigned_by"`
}

// Open reports whether the interval is still active.
func (i SiteInterval) Open() bool { return i.To == nil }
