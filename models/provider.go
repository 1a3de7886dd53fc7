package models

import "time"

// Provider is a service-provider profile owned by a user account.
// A single user may own several provider profiles (one per trade).
type Provider struct {
	ID           string            `bson:"id" json:"id"`
	UserID       string            `bson:"user_id" json:"user_id"`
	ServiceType  string            `bson:"service_type" json:"service_type"`
	Location     string            `bson:"location" json:"location"`
	Description  string            `bson:"description,omitempty" json:"description,omitempty"`
	HourlyRate   float64           `bson:"hourly_rate,omitempty" json:"hourly_rate,omitempty"`
	Availability map[string]string `bson:"availability,omitempty" json:"availability,omitempty"`
	IsVerified   bool              `bson:"is_verified" json:"is_verified"`

	// Rating aggregate: Rating is the running arithmetic mean of all
	// accepted scores, TotalRatings the number of accepted ratings.
	// Both are updated only by the rating service.
	Rating       float64 `bson:"rating" json:"rating"`
	TotalRatings int     `bson:"total_ratings" json:"total_ratings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayRating returns the aggregate rounded to two decimals. Internal
// accumulation keeps full precision so repeated folds do not drift.
func (p *Provider) DisplayRating() float64 {
	return RoundScore(p.Rating)
}
