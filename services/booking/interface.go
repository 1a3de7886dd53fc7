package booking

import (
	"context"

	"hustlr/models"
)

// Actor is the identity assertion attached to every operation.
type Actor struct {
	ID   string
	Role string
}

// CreateBookingRequest carries the customer's booking intent.
type CreateBookingRequest struct {
	ProviderID    string  `json:"provider_id" binding:"required"`
	ServiceType   string  `json:"service_type" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	Time          string  `json:"time" binding:"required"`
	DurationHours float64 `json:"duration_hours"`
	Notes         string  `json:"notes"`
}

// Cancel/reschedule action literals.
const (
	ActionCancel     = "cancel"
	ActionReschedule = "reschedule"
)

// CancelRescheduleRequest carries a cancellation or reschedule of an
// existing booking.
type CancelRescheduleRequest struct {
	Action  string `json:"action" binding:"required"`
	Reason  string `json:"reason"`
	NewDate string `json:"new_date"`
	NewTime string `json:"new_time"`
}

// BookingService owns the booking state machine.
type BookingService interface {
	Create(ctx context.Context, actor Actor, req CreateBookingRequest) (*models.Booking, error)
	SetStatus(ctx context.Context, actor Actor, bookingID, newStatus string) (*models.Booking, error)
	CancelOrReschedule(ctx context.Context, actor Actor, bookingID string, req CancelRescheduleRequest) (*models.Booking, error)
	List(ctx context.Context, actor Actor) ([]models.Booking, error)
}
