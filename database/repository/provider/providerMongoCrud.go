package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hustlr/models"
)

// ensureIndexes creates indexes for fields frequently used in queries.
func (repo *MongoProviderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetName("user_idx")},
		{
			Keys:    bson.D{{Key: "service_type", Value: 1}, {Key: "location", Value: 1}, {Key: "is_verified", Value: 1}},
			Options: options.Index().SetName("search_idx"),
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	return nil
}

// Create inserts a new provider profile document.
func (repo *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, provider); err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}
	return nil
}

// GetByID retrieves a provider by its ID.
func (repo *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var provider models.Provider
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching provider %s: %w", id, err)
	}
	return &provider, nil
}

// ListByUser returns all provider profiles owned by the given user.
func (repo *MongoProviderRepo) ListByUser(ctx context.Context, userID string) ([]models.Provider, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("error listing providers for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var providers []models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("error decoding providers: %w", err)
	}
	return providers, nil
}

// SetVerified flips the verification flag on a provider profile.
func (repo *MongoProviderRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"is_verified": verified, "updated_at": time.Now().UTC()}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error updating provider %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of provider profiles.
func (repo *MongoProviderRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting providers: %w", err)
	}
	return n, nil
}
