package providerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hustlr/models"
)

// Search returns providers matching service type and location by
// case-insensitive substring, optionally restricted to verified profiles.
func (repo *MongoProviderRepo) Search(ctx context.Context, serviceType, location string, verifiedOnly bool, limit int64) ([]models.Provider, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	filter := bson.M{
		"service_type": primitive.Regex{Pattern: serviceType, Options: "i"},
		"location":     primitive.Regex{Pattern: location, Options: "i"},
	}
	if verifiedOnly {
		filter["is_verified"] = true
	}

	cursor, err := repo.coll.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("error searching providers: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("error decoding providers: %w", err)
	}
	return providers, nil
}

// ApplyRating folds score into the provider's rating aggregate with a
// compare-and-swap loop: the update only matches when total_ratings
// still holds the value read, so two concurrent folds on the same
// provider cannot lose an update. Returns the provider after the fold.
func (repo *MongoProviderRepo) ApplyRating(ctx context.Context, providerID string, score int) (*models.Provider, error) {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		provider, err := repo.GetByID(ctx, providerID)
		if err != nil {
			return nil, err
		}

		oldCount := provider.TotalRatings
		newCount := oldCount + 1
		newRating := (provider.Rating*float64(oldCount) + float64(score)) / float64(newCount)

		casCtx, cancel := newContext(ctx)
		res, err := repo.coll.UpdateOne(casCtx,
			bson.M{"id": providerID, "total_ratings": oldCount},
			bson.M{"$set": bson.M{
				"rating":        newRating,
				"total_ratings": newCount,
				"updated_at":    time.Now().UTC(),
			}},
		)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("error applying rating to provider %s: %w", providerID, err)
		}
		if res.ModifiedCount == 1 {
			provider.Rating = newRating
			provider.TotalRatings = newCount
			return provider, nil
		}
		// Lost the race; re-read and retry.
	}
	return nil, fmt.Errorf("rating aggregate for provider %s contended beyond %d attempts", providerID, maxAttempts)
}
