package whatsapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	conversationRepo "hustlr/database/repository/conversation"
	userRepo "hustlr/database/repository/user"
	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/utils"
)

const defaultSource = "whatsapp"

// DefaultMessageService implements MessageService: it gates the
// conversational pipeline behind the (source, message_id) dedup key,
// invokes the responder at most once per delivery, and dispatches any
// structured action the responder requests into the booking engine.
type DefaultMessageService struct {
	Repo             conversationRepo.ConversationRepository
	UserRepo         userRepo.UserRepository
	Responder        Responder
	BookingSvc       booking.BookingService
	ResponderTimeout time.Duration
	Logger           *zap.Logger
}

func (svc *DefaultMessageService) logger() *zap.Logger {
	if svc.Logger != nil {
		return svc.Logger
	}
	return zap.L()
}

// Handle processes one inbound delivery. Replays of a known
// (source, message_id) return the stored reply without touching the
// responder. A responder failure is terminal for the delivery: the
// record is marked failed, the fallback reply is cached against the
// message id, and replays get that fallback.
func (svc *DefaultMessageService) Handle(ctx context.Context, msg Inbound) (*Outcome, error) {
	text := strings.TrimSpace(msg.Message)
	if text == "" {
		return nil, utils.InvalidInputError("empty message")
	}

	source := msg.Source
	if source == "" {
		source = defaultSource
	}
	subject := extractSubject(msg.Sender)
	sessionKey := source + "_" + subject

	now := time.Now().UTC()
	record := &models.Conversation{
		ID:               uuid.New().String(),
		UserID:           subject,
		Source:           source,
		MessageID:        msg.MessageID,
		Message:          text,
		ProcessingStatus: models.ProcessingReceived,
		Timestamp:        msg.Timestamp,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	stored, inserted, err := svc.Repo.InsertIfAbsent(ctx, record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		svc.logger().Info("Deduplicated inbound message",
			zap.String("source", source),
			zap.String("message_id", msg.MessageID))
		return &Outcome{
			Success:        true,
			Message:        "Message already processed",
			ReplyText:      stored.Response,
			ConversationID: stored.ID,
			MessageID:      msg.MessageID,
			Deduplicated:   true,
		}, nil
	}

	reply, err := svc.invokeResponder(ctx, text, sessionKey)
	if err != nil {
		svc.logger().Error("Responder invocation failed",
			zap.String("message_id", msg.MessageID),
			zap.Error(err))
		if markErr := svc.Repo.MarkFailed(ctx, record.ID, DefaultErrorReply, err.Error()); markErr != nil {
			svc.logger().Error("Failed to mark conversation failed", zap.Error(markErr))
		}
		// Degraded success: the bridge gets a reply either way, so it
		// never retries the delivery.
		return &Outcome{
			Success:        false,
			Message:        "Failed to process message",
			ReplyText:      DefaultErrorReply,
			ConversationID: record.ID,
			MessageID:      msg.MessageID,
			Error:          "internal_error",
		}, nil
	}

	if reply.Action != nil {
		svc.dispatchAction(ctx, subject, reply.Action)
	}

	replyText := normalizeReply(reply)
	if err := svc.Repo.MarkCompleted(ctx, record.ID, replyText, reply.Success); err != nil {
		svc.logger().Error("Failed to mark conversation completed", zap.Error(err))
	}

	return &Outcome{
		Success:        true,
		Message:        "Message processed",
		ReplyText:      replyText,
		ConversationID: record.ID,
		MessageID:      msg.MessageID,
	}, nil
}

func (svc *DefaultMessageService) invokeResponder(ctx context.Context, text, sessionKey string) (*Reply, error) {
	timeout := svc.ResponderTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := svc.Responder.Respond(ctx, text, sessionKey)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, errors.New("responder returned no reply")
	}
	return reply, nil
}

// dispatchAction routes a structured responder action into the booking
// engine on behalf of the sender. Action failures do not fail the
// message pipeline; the responder's reply already tells the user what
// happened, and the next turn can retry.
func (svc *DefaultMessageService) dispatchAction(ctx context.Context, subject string, action *BookingAction) {
	if svc.BookingSvc == nil {
		return
	}

	user, err := svc.UserRepo.GetByPhone(ctx, subject)
	if err != nil {
		svc.logger().Warn("Cannot dispatch responder action for unknown sender",
			zap.String("subject", subject),
			zap.String("action", action.Type))
		return
	}
	actor := booking.Actor{ID: user.ID, Role: user.Role}

	switch action.Type {
	case ActionCreateBooking:
		_, err = svc.BookingSvc.Create(ctx, actor, booking.CreateBookingRequest{
			ProviderID:    action.ProviderID,
			ServiceType:   action.ServiceType,
			Date:          action.Date,
			Time:          action.Time,
			DurationHours: action.DurationHours,
			Notes:         action.Notes,
		})
	case ActionCancelBooking:
		_, err = svc.BookingSvc.CancelOrReschedule(ctx, actor, action.BookingID, booking.CancelRescheduleRequest{
			Action: booking.ActionCancel,
			Reason: action.Reason,
		})
	default:
		svc.logger().Warn("Unknown responder action", zap.String("action", action.Type))
		return
	}
	if err != nil {
		svc.logger().Warn("Responder action failed",
			zap.String("action", action.Type),
			zap.Error(err))
	}
}
