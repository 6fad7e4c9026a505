// internal/domain/models/site.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Site is an admin-managed work site. Names are unique case-insensitively.
// Teams are not first-class records; they are derived from members' teams.
type Site struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`
	CreatedBy string             `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
