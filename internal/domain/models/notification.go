// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is appended for the submitter of an expense whenever an
// admin decides it. Always created unread.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      string             `bson:"user" json:"user"`
	Status    string             `bson:"status" json:"status"`
	ExpenseID primitive.ObjectID `bson:"expense_id" json:"expense_id"`
	Remark    string             `bson:"remark,omitempty" json:"remark,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	Date      time.Time          `bson:"date" json:"date"`
}
