package bookingRepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hustlr/models"
)

// FindActiveBySlot returns the pending or confirmed booking occupying
// (providerID, date, timeOfDay), excluding excludeID so a reschedule
// does not conflict with the booking being moved. Returns nil when the
// slot is free.
func (repo *MongoBookingRepo) FindActiveBySlot(ctx context.Context, providerID, date, timeOfDay, excludeID string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"date":        date,
		"time":        timeOfDay,
		"status":      bson.M{"$in": []models.BookingStatus{models.BookingPending, models.BookingConfirmed}},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	var booking models.Booking
	if err := repo.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error checking slot for provider %s: %w", providerID, err)
	}
	return &booking, nil
}

// ListByCustomer returns all bookings created by the given customer.
func (repo *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"customer_id": customerID})
}

// ListByProviders returns all bookings targeting any of the given providers.
func (repo *MongoBookingRepo) ListByProviders(ctx context.Context, providerIDs []string) ([]models.Booking, error) {
	if len(providerIDs) == 0 {
		return nil, nil
	}
	return repo.list(ctx, bson.M{"provider_id": bson.M{"$in": providerIDs}})
}

// ListAll returns every booking. Admin use only.
func (repo *MongoBookingRepo) ListAll(ctx context.Context) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{})
}

// Count returns the total number of bookings.
func (repo *MongoBookingRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}
	return n, nil
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
