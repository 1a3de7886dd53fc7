package models

import "time"

// Processing states for an inbound conversation record.
const (
	ProcessingReceived  = "received"
	ProcessingCompleted = "completed"
	ProcessingFailed    = "failed"
)

// Conversation is one inbound message delivery attempt, keyed by
// (source, message_id). Replays of the same key return the stored
// response without re-invoking the responder.
type Conversation struct {
	ID               string    `bson:"id" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	Source           string    `bson:"source" json:"source"`
	MessageID        string    `bson:"message_id" json:"message_id"`
	Message          string    `bson:"message" json:"message"`
	Response         string    `bson:"response,omitempty" json:"response,omitempty"`
	ProcessingStatus string    `bson:"processing_status" json:"processing_status"`
	ProcessingError  string    `bson:"processing_error,omitempty" json:"processing_error,omitempty"`
	AgentSuccess     bool      `bson:"agent_success" json:"agent_success"`
	Timestamp        string    `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}
