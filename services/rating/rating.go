package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "hustlr/database/repository/booking"
	providerRepo "hustlr/database/repository/provider"
	ratingRepo "hustlr/database/repository/rating"
	"hustlr/models"
	"hustlr/services/booking"
	"hustlr/utils"
)

// SubmitRatingRequest carries a customer's rating for a completed booking.
type SubmitRatingRequest struct {
	BookingID  string `json:"booking_id" binding:"required"`
	CustomerID string `json:"customer_id" binding:"required"`
	ProviderID string `json:"provider_id" binding:"required"`
	Score      int    `json:"score" binding:"required"`
	Comment    string `json:"comment"`
}

// RatingService accepts ratings and folds them into provider aggregates.
type RatingService interface {
	Submit(ctx context.Context, actor booking.Actor, bookingID string, req SubmitRatingRequest) (*models.Rating, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Rating, error)
}

// DefaultRatingService implements RatingService.
type DefaultRatingService struct {
	Repo         ratingRepo.RatingRepository
	BookingRepo  bookingRepo.BookingRepository
	ProviderRepo providerRepo.ProviderRepository
	Logger       *zap.Logger
}

func (svc *DefaultRatingService) logger() *zap.Logger {
	if svc.Logger != nil {
		return svc.Logger
	}
	return zap.L()
}

// Submit accepts one rating for a completed booking, by the booking's
// own customer, and updates the provider aggregate exactly once. The
// redundant customer/provider ids in the payload are checked against
// the booking to catch payload mix-ups.
func (svc *DefaultRatingService) Submit(ctx context.Context, actor booking.Actor, bookingID string, req SubmitRatingRequest) (*models.Rating, error) {
	bkg, err := svc.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, utils.NotFoundError("booking not found")
		}
		return nil, err
	}

	if actor.Role != models.RoleCustomer || bkg.CustomerID != actor.ID {
		return nil, utils.ForbiddenError("not authorized to rate this booking")
	}
	if bkg.Status != models.BookingCompleted {
		return nil, utils.InvalidStateError("can only rate completed bookings")
	}

	if req.BookingID != bookingID {
		return nil, utils.InvalidInputError("booking ID mismatch")
	}
	if req.CustomerID != bkg.CustomerID {
		return nil, utils.InvalidInputError("customer ID mismatch")
	}
	if req.ProviderID != bkg.ProviderID {
		return nil, utils.InvalidInputError("provider ID mismatch")
	}
	if req.Score < 1 || req.Score > 5 {
		return nil, utils.InvalidInputError("score must be between 1 and 5")
	}

	existing, err := svc.Repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ConflictError("rating already submitted for this booking")
	}

	rating := &models.Rating{
		ID:         uuid.New().String(),
		BookingID:  bookingID,
		CustomerID: bkg.CustomerID,
		ProviderID: bkg.ProviderID,
		Score:      req.Score,
		Comment:    req.Comment,
		CreatedAt:  svcNow(),
	}

	// Insert first: the unique booking_id index makes a concurrent
	// duplicate lose here, before any aggregate change.
	if err := svc.Repo.Create(ctx, rating); err != nil {
		if errors.Is(err, ratingRepo.ErrDuplicate) {
			return nil, utils.ConflictError("rating already submitted for this booking")
		}
		return nil, err
	}

	provider, err := svc.ProviderRepo.ApplyRating(ctx, bkg.ProviderID, req.Score)
	if err != nil {
		// The rating is persisted; the aggregate can be rebuilt from the
		// ratings collection. Surface the failure rather than hiding it.
		svc.logger().Error("Rating stored but aggregate update failed",
			zap.String("booking_id", bookingID),
			zap.String("provider_id", bkg.ProviderID),
			zap.Error(err))
		return nil, fmt.Errorf("rating stored but provider aggregate update failed: %w", err)
	}

	svc.logger().Info("Rating submitted",
		zap.String("booking_id", bookingID),
		zap.Int("score", req.Score),
		zap.Float64("provider_rating", provider.DisplayRating()),
		zap.Int("provider_total", provider.TotalRatings))
	return rating, nil
}

func svcNow() time.Time { return time.Now().UTC() }

// ListByProvider returns all ratings received by a provider.
func (svc *DefaultRatingService) ListByProvider(ctx context.Context, providerID string) ([]models.Rating, error) {
	return svc.Repo.ListByProvider(ctx, providerID)
}
