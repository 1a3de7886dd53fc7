package models

import "time"

// Booking status values. The lifecycle is
// pending -> confirmed -> completed, with cancelled reachable from
// pending or confirmed. Completed and cancelled are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is one of the four known statuses.
func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Wire formats for booking date and time-of-day.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking occupies the slot (provider_id, date, time). Duration is
// informational only and takes no part in conflict detection.
type Booking struct {
	ID            string        `bson:"id" json:"id"`
	CustomerID    string        `bson:"customer_id" json:"customer_id"`
	ProviderID    string        `bson:"provider_id" json:"provider_id"`
	ServiceType   string        `bson:"service_type" json:"service_type"`
	Date          string        `bson:"date" json:"date"`
	Time          string        `bson:"time" json:"time"`
	DurationHours float64       `bson:"duration_hours" json:"duration_hours"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Status        BookingStatus `bson:"status" json:"status"`

	CancellationReason string    `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}
