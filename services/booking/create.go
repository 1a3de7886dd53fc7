package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "hustlr/database/repository/booking"
	providerRepo "hustlr/database/repository/provider"
	"hustlr/models"
	"hustlr/utils"
)

// Create validates and persists a new booking with status pending.
// Only customers can book; the provider must exist and be verified; the
// slot must be a future instant and not already held.
func (svc *DefaultBookingService) Create(ctx context.Context, actor Actor, req CreateBookingRequest) (*models.Booking, error) {
	if actor.Role != models.RoleCustomer {
		return nil, utils.ForbiddenError("only customers can create bookings")
	}

	provider, err := svc.ProviderRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, utils.NotFoundError("provider not found or not verified")
		}
		return nil, err
	}
	if !provider.IsVerified {
		return nil, utils.NotFoundError("provider not found or not verified")
	}

	slot, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, utils.InvalidInputError("invalid date or time format, use YYYY-MM-DD and HH:MM")
	}
	if !slot.After(svc.now()) {
		return nil, utils.InvalidInputError("booking must be scheduled for a future date and time")
	}

	taken, err := svc.slotTaken(ctx, req.ProviderID, req.Date, req.Time, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, utils.ConflictError("provider is not available at this date and time")
	}

	duration := req.DurationHours
	if duration <= 0 {
		duration = 1
	}

	now := svc.now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    actor.ID,
		ProviderID:    req.ProviderID,
		ServiceType:   req.ServiceType,
		Date:          req.Date,
		Time:          req.Time,
		DurationHours: duration,
		Notes:         req.Notes,
		Status:        models.BookingPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The slot index is the authority under a race: a concurrent create
	// that slipped past the read check loses here.
	if err := svc.Repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, utils.ConflictError("provider is not available at this date and time")
		}
		return nil, err
	}

	svc.logger().Info("Created booking",
		zap.String("booking_id", booking.ID),
		zap.String("customer_id", actor.ID),
		zap.String("provider_id", req.ProviderID))
	return booking, nil
}
