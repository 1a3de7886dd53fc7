package bookingRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"hustlr/models"
)

// ErrSlotTaken is returned when a write collides with the unique active
// slot index (provider_id, date, time over pending/confirmed bookings).
var ErrSlotTaken = errors.New("booking slot already taken")

// ErrNotFound is returned when no booking matches the given id.
var ErrNotFound = errors.New("booking not found")

// BookingRepository defines the interface for booking data access.
type BookingRepository interface {
	EnsureIndexes() error
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	FindActiveBySlot(ctx context.Context, providerID, date, timeOfDay, excludeID string) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListByProviders(ctx context.Context, providerIDs []string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	Count(ctx context.Context) (int64, error)
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a booking repository over the given database.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

func newContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}
