package whatsapp

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// DefaultErrorReply is the fixed fallback used whenever the responder
// fails or times out.
const DefaultErrorReply = "Sorry, I am having trouble processing your request right now. " +
	"Please try again in a moment."

const emptyReply = "I received your message. How can I help you today?"

// extractSubject strips the transport suffix from a raw sender address,
// e.g. "+15551110001@s.whatsapp.net" -> "+15551110001".
func extractSubject(sender string) string {
	if at := strings.Index(sender, "@"); at >= 0 {
		return sender[:at]
	}
	return sender
}

// normalizeReply flattens the responder's output into the text sent
// back over the bridge. A JSON envelope with a non-empty "message"
// field is unwrapped; anything else is passed through as-is.
func normalizeReply(reply *Reply) string {
	if reply == nil || !reply.Success {
		return DefaultErrorReply
	}

	raw := strings.TrimSpace(reply.Text)
	if raw == "" {
		return emptyReply
	}

	if strings.HasPrefix(raw, "{") {
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			zap.L().Warn("Responder reply looked like JSON but failed to parse")
		} else if strings.TrimSpace(payload.Message) != "" {
			return strings.TrimSpace(payload.Message)
		}
	}
	return raw
}
