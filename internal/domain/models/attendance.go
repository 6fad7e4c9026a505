// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is the punch-in location captured by the client.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Attendance is one punch-in record. It follows the same
// pending → approved|rejected lifecycle as expenses.
type Attendance struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonName   string             `bson:"person_name" json:"person_name"`
	Category     string             `bson:"category" json:"category"`
	SiteName     string             `bson:"site_name" json:"site_name"`
	TeamName     string             `bson:"team_name,omitempty" json:"team_name,omitempty"`
	Date         string             `bson:"date" json:"date"` // ISO yyyy-mm-dd
	TimeIn       string             `bson:"time_in" json:"time_in"`
	IsLate       bool               `bson:"is_late" json:"is_late"`
	HalfDay      bool               `bson:"half_day" json:"half_day"`
	Location     *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	LocationName string             `bson:"location_name,omitempty" json:"location_name,omitempty"`
	Status       string             `bson:"status" json:"status"`
	MarkedBy     string             `bson:"marked_by" json:"marked_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
