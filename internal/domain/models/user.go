// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a login account. Accounts are provisioned when a Head Office
// registration is approved, carrying the registration's uploaded documents.
type User struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email         string              `bson:"email" json:"email"`
	PasswordHash  string              `bson:"password_hash" json:"-"`
	FullName      string              `bson:"full_name" json:"full_name"`
	FullNameCI    string              `bson:"full_name_ci" json:"-"`
	Role          string              `bson:"role" json:"role"` // admin | member
	MemberID      *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Documents     map[string]string   `bson:"documents,omitempty" json:"documents,omitempty"`
	RequiresLogin bool                `bson:"requires_login" json:"requires_login"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}
