package models

import (
	"math"
	"time"
)

// Rating is a customer's score for one completed booking. At most one
// rating ever exists per booking, and it is immutable once created.
type Rating struct {
	ID         string    `bson:"id" json:"id"`
	BookingID  string    `bson:"booking_id" json:"booking_id"`
	CustomerID string    `bson:"customer_id" json:"customer_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	Score      int       `bson:"score" json:"score"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// RoundScore rounds an aggregate score to two decimals for display.
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
