package conversationRepo

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

// ConversationRepository defines the interface for the inbound message
// dedup store.
type ConversationRepository interface {
	EnsureIndexes() error
	InsertIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error)
	MarkCompleted(ctx context.Context, id, response string, agentSuccess bool) error
	MarkFailed(ctx context.Context, id, response, processingError string) error
}

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

// NewMongoConversationRepo constructs a conversation repository over the
// given database.
func NewMongoConversationRepo(db *mongo.Database) *MongoConversationRepo {
	return &MongoConversationRepo{coll: db.Collection("conversations")}
}

func newContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}

// EnsureIndexes creates the indexes on the conversations collection.
// The unique (source, message_id) index makes record creation an atomic
// insert-if-absent: of two racing deliveries of the same message,
// exactly one insert succeeds.
func (repo *MongoConversationRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_delivery"),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetName("user_idx")},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts conv keyed by (source, message_id). When a
// record with that key already exists (a replayed delivery, or losing a
// race to a concurrent one), the existing record is returned with
// inserted=false and conv is discarded.
func (repo *MongoConversationRepo) InsertIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	insCtx, cancel := newContext(ctx)
	defer cancel()

	_, err := repo.coll.InsertOne(insCtx, conv)
	if err == nil {
		return conv, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("error inserting conversation: %w", err)
	}

	findCtx, cancel := newContext(ctx)
	defer cancel()

	var existing models.Conversation
	filter := bson.M{"source": conv.Source, "message_id": conv.MessageID}
	if err := repo.coll.FindOne(findCtx, filter).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, fmt.Errorf("conversation %s/%s vanished after duplicate insert", conv.Source, conv.MessageID)
		}
		return nil, false, fmt.Errorf("error fetching existing conversation: %w", err)
	}
	return &existing, false, nil
}

// MarkCompleted stores the computed reply and flips the record to completed.
func (repo *MongoConversationRepo) MarkCompleted(ctx context.Context, id, response string, agentSuccess bool) error {
	return repo.update(ctx, id, bson.M{
		"response":          response,
		"processing_status": models.ProcessingCompleted,
		"agent_success":     agentSuccess,
		"updated_at":        time.Now().UTC(),
	})
}

// MarkFailed stores the fallback reply and the captured error. The
// record stays in place so replays of the same delivery are still
// deduplicated against it.
func (repo *MongoConversationRepo) MarkFailed(ctx context.Context, id, response, processingError string) error {
	return repo.update(ctx, id, bson.M{
		"response":          response,
		"processing_status": models.ProcessingFailed,
		"processing_error":  processingError,
		"agent_success":     false,
		"updated_at":        time.Now().UTC(),
	})
}

func (repo *MongoConversationRepo) update(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	if _, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("error updating conversation %s: %w", id, err)
	}
	return nil
}
