package ratingRepo

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

// ErrDuplicate is returned when a rating already exists for the booking.
var ErrDuplicate = errors.New("rating already exists for booking")

// RatingRepository defines the interface for rating data access.
type RatingRepository interface {
	EnsureIndexes() error
	Create(ctx context.Context, rating *models.Rating) error
	GetByBookingID(ctx context.Context, bookingID string) (*models.Rating, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Rating, error)
	Count(ctx context.Context) (int64, error)
}

// MongoRatingRepo implements RatingRepository using MongoDB.
type MongoRatingRepo struct {
	coll *mongo.Collection
}

// NewMongoRatingRepo constructs a rating repository over the given database.
func NewMongoRatingRepo(db *mongo.Database) *MongoRatingRepo {
	return &MongoRatingRepo{coll: db.Collection("ratings")}
}

func newContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}

// EnsureIndexes creates the indexes on the ratings collection. The
// unique index on booking_id is what makes rating submission
// exactly-once under concurrent attempts.
func (repo *MongoRatingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_booking")},
		{Keys: bson.D{{Key: "provider_id", Value: 1}}, Options: options.Index().SetName("provider_idx")},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create rating indexes: %w", err)
	}
	return nil
}

// Create inserts a new rating document. A second rating for the same
// booking collides with the unique index and is reported as ErrDuplicate.
func (repo *MongoRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, rating); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error creating rating: %w", err)
	}
	return nil
}

// GetByBookingID retrieves the rating for a booking, nil when absent.
func (repo *MongoRatingRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Rating, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var rating models.Rating
	if err := repo.coll.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&rating); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching rating for booking %s: %w", bookingID, err)
	}
	return &rating, nil
}

// ListByProvider returns all ratings received by a provider.
func (repo *MongoRatingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Rating, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("error listing ratings for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var ratings []models.Rating
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("error decoding ratings: %w", err)
	}
	return ratings, nil
}

// Count returns the total number of ratings.
func (repo *MongoRatingRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting ratings: %w", err)
	}
	return n, nil
}
