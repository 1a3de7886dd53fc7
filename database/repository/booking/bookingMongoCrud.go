package bookingRepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hustlr/models"
)

// Create inserts a new booking document. A collision on the active slot
// index is reported as ErrSlotTaken.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var booking models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// Update replaces the mutable fields of an existing booking. A reschedule
// that collides with another active booking on the slot index is
// reported as ErrSlotTaken.
func (repo *MongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"date":                booking.Date,
		"time":                booking.Time,
		"status":              booking.Status,
		"cancellation_reason": booking.CancellationReason,
		"updated_at":          booking.UpdatedAt,
	}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": booking.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error updating booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
