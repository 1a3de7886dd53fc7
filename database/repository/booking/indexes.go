package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the bookings collection.
//
// The unique partial index on (provider_id, date, time) restricted to
// pending/confirmed bookings is the serialization point for slot
// conflicts: two concurrent writes for the same slot cannot both
// succeed, regardless of how many process instances are running.
// The $in partial filter requires MongoDB 6.0+.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{
				{Key: "provider_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_active_slot").
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []string{"pending", "confirmed"}},
				}),
		},
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}},
			Options: options.Index().SetName("customer_idx"),
		},
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("provider_status_idx"),
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
