package userRepo

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

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// ErrDuplicate is returned when the phone number is already registered.
var ErrDuplicate = errors.New("phone number already registered")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	EnsureIndexes() error
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo constructs a user repository over the given database.
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

func newContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (repo *MongoUserRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_phone")},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document.
func (repo *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (repo *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

// GetByPhone retrieves a user by phone number.
func (repo *MongoUserRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	return repo.findOne(ctx, bson.M{"phone_number": phoneNumber})
}

// Count returns the total number of users.
func (repo *MongoUserRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}

func (repo *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var user models.User
	if err := repo.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return &user, nil
}
