package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"hustlr/services/whatsapp"
)

const systemPrompt = `You are Hustlr, a WhatsApp assistant that helps customers find and book
local service providers (plumbers, electricians, cleaners and similar).
Answer in plain text, or in a JSON object with a "message" field and an
optional "action" object describing a booking action to perform:
{"message": "...", "action": {"type": "create_booking", "provider_id": "...",
"service_type": "...", "date": "YYYY-MM-DD", "time": "HH:MM"}}.
Action types: create_booking, cancel_booking (with "booking_id").`

// GeminiResponder implements whatsapp.Responder on top of the Gemini API.
type GeminiResponder struct {
	model  *genai.GenerativeModel
	store  *RedisContextStore
	logger *zap.Logger
}

// NewGeminiResponder creates the Gemini client. The context store is
// optional; without it every message is answered statelessly.
func NewGeminiResponder(ctx context.Context, apiKey, modelName string, store *RedisContextStore, logger *zap.Logger) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	return &GeminiResponder{model: model, store: store, logger: logger}, nil
}

// Respond sends the user's text, prefixed with the session's recent
// turns, and maps the generation into a structured reply.
func (g *GeminiResponder) Respond(ctx context.Context, text, sessionKey string) (*whatsapp.Reply, error) {
	prompt := g.buildPrompt(ctx, text, sessionKey)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	raw := sb.String()

	if g.store != nil {
		if err := g.store.Append(ctx, sessionKey, Turn{Role: "user", Text: text}); err == nil {
			_ = g.store.Append(ctx, sessionKey, Turn{Role: "assistant", Text: raw})
		}
	}

	return &whatsapp.Reply{
		Success: true,
		Text:    raw,
		Action:  parseAction(raw),
	}, nil
}

func (g *GeminiResponder) buildPrompt(ctx context.Context, text, sessionKey string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")

	if g.store != nil {
		turns, err := g.store.Get(ctx, sessionKey)
		if err != nil && g.logger != nil {
			g.logger.Warn("Failed to load session context", zap.String("session", sessionKey), zap.Error(err))
		}
		for _, t := range turns {
			sb.WriteString(t.Role)
			sb.WriteString(": ")
			sb.WriteString(t.Text)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("user: ")
	sb.WriteString(text)
	return sb.String()
}

// parseAction pulls a structured action out of a JSON-enveloped reply,
// nil when the reply is plain text or carries no action.
func parseAction(raw string) *whatsapp.BookingAction {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var payload struct {
		Action *whatsapp.BookingAction `json:"action"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil
	}
	if payload.Action == nil || payload.Action.Type == "" {
		return nil
	}
	return payload.Action
}
