package providerRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"hustlr/models"
)

// ErrNotFound is returned when no provider matches the given id.
var ErrNotFound = errors.New("provider not found")

// ProviderRepository defines the interface for provider data access.
type ProviderRepository interface {
	EnsureIndexes() error
	Create(ctx context.Context, provider *models.Provider) error
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	ListByUser(ctx context.Context, userID string) ([]models.Provider, error)
	Search(ctx context.Context, serviceType, location string, verifiedOnly bool, limit int64) ([]models.Provider, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	ApplyRating(ctx context.Context, providerID string, score int) (*models.Provider, error)
	Count(ctx context.Context) (int64, error)
}

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo constructs a provider repository over the given database.
func NewMongoProviderRepo(db *mongo.Database) *MongoProviderRepo {
	return &MongoProviderRepo{coll: db.Collection("service_providers")}
}

func newContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}
