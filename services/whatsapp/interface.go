package whatsapp

import "context"

// BookingAction is a structured action the responder may request
// alongside its conversational reply.
type BookingAction struct {
	Type          string  `json:"type"`
	ProviderID    string  `json:"provider_id,omitempty"`
	ServiceType   string  `json:"service_type,omitempty"`
	Date          string  `json:"date,omitempty"`
	Time          string  `json:"time,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	BookingID     string  `json:"booking_id,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// Action types the pipeline knows how to dispatch.
const (
	ActionCreateBooking = "create_booking"
	ActionCancelBooking = "cancel_booking"
)

// Reply is the responder's structured output.
type Reply struct {
	Success bool
	Text    string
	Action  *BookingAction
	Err     string
}

// Responder is the external conversational engine. The session key
// correlates turns of the same conversation; it is independent of the
// dedup key.
type Responder interface {
	Respond(ctx context.Context, text, sessionKey string) (*Reply, error)
}

// Inbound is an incoming message delivery from the bridge.
type Inbound struct {
	Sender    string `json:"sender" binding:"required"`
	Message   string `json:"message"`
	MessageID string `json:"messageId" binding:"required"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Outcome is what the bridge gets back. The webhook never hard-fails:
// a responder problem degrades into Success=false with a fallback
// reply, so the bridge has no reason to retry the delivery.
type Outcome struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	ReplyText      string `json:"reply_text"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id"`
	Deduplicated   bool   `json:"deduplicated"`
	Error          string `json:"error,omitempty"`
}

// MessageService is the dedup-gated inbound message pipeline.
type MessageService interface {
	Handle(ctx context.Context, msg Inbound) (*Outcome, error)
}
