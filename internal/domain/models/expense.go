// internal/domain/models/expense.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense is a voucher submitted against a site. Dates are stored as ISO
// "2006-01-02" strings so lexicographic order equals chronological order;
// amounts are kept as the submitted decimal string and parsed only at
// aggregation time.
type Expense struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date        string             `bson:"date" json:"date"` // ISO yyyy-mm-dd
	Person      string             `bson:"person" json:"person"`
	PersonCI    string             `bson:"person_ci" json:"-"`
	SiteName    string             `bson:"site_name" json:"site_name"`
	Category    string             `bson:"category" json:"category"`
	PaidTo      string             `bson:"paid_to" json:"paid_to"`
	Amount      string             `bson:"amount" json:"amount"`
	Remarks     string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Status      string             `bson:"status" json:"status"`
	BillURL     string             `bson:"bill_url,omitempty" json:"bill_url,omitempty"`
	AdminRemark string             `bson:"admin_remark,omitempty" json:"admin_remark,omitempty"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`

	// Set only on documents in the rejected_expenses collection.
	RejectedAt *time.Time `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
}

// Payment is an advance or settlement paid to a person. Payments are
// independent of expenses and meet them only in the ledger report.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Person    string             `bson:"person" json:"person"`
	PersonCI  string             `bson:"person_ci" json:"-"`
	Date      string             `bson:"date" json:"date"` // ISO yyyy-mm-dd
	Amount    string             `bson:"amount" json:"amount"`
	Remarks   string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
