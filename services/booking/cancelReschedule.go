package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	bookingRepo "hustlr/database/repository/booking"
	"hustlr/models"
	"hustlr/utils"
)

// CancelOrReschedule cancels a booking or moves it to a new slot. Only
// the owning customer may invoke either action, and only while the
// booking is still pending or confirmed. A reschedule resets the
// booking to pending so the provider re-confirms the new slot.
func (svc *DefaultBookingService) CancelOrReschedule(ctx context.Context, actor Actor, bookingID string, req CancelRescheduleRequest) (*models.Booking, error) {
	if req.Action != ActionCancel && req.Action != ActionReschedule {
		return nil, utils.InvalidInputError("action must be cancel or reschedule")
	}

	booking, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, utils.NotFoundError("booking not found")
		}
		return nil, err
	}

	if actor.Role != models.RoleCustomer || booking.CustomerID != actor.ID {
		return nil, utils.ForbiddenError("not authorized to cancel this booking")
	}
	if booking.Status.Terminal() {
		return nil, utils.InvalidStateError("cannot cancel a completed or already cancelled booking")
	}

	if req.Action == ActionReschedule {
		if err := svc.reschedule(ctx, booking, req); err != nil {
			return nil, err
		}
	} else {
		booking.Status = models.BookingCancelled
		if req.Reason != "" {
			booking.CancellationReason = req.Reason
		}
		svc.logger().Info("Cancelled booking", zap.String("booking_id", booking.ID))
	}

	booking.UpdatedAt = svc.now()
	if err := svc.Repo.Update(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, utils.ConflictError("provider is not available at the new date and time")
		}
		return nil, err
	}
	return booking, nil
}

func (svc *DefaultBookingService) reschedule(ctx context.Context, booking *models.Booking, req CancelRescheduleRequest) error {
	if req.NewDate == "" {
		return utils.InvalidInputError("new_date is required for rescheduling")
	}
	newTime := req.NewTime
	if newTime == "" {
		newTime = booking.Time
	}

	slot, err := parseSlot(req.NewDate, newTime)
	if err != nil {
		return utils.InvalidInputError("invalid date or time format for rescheduling")
	}
	if !slot.After(svc.now()) {
		return utils.InvalidInputError("new booking date/time must be in the future")
	}

	// Excluding the booking itself means rescheduling onto its own
	// current slot is not a conflict.
	taken, err := svc.slotTaken(ctx, booking.ProviderID, req.NewDate, newTime, booking.ID)
	if err != nil {
		return err
	}
	if taken {
		return utils.ConflictError("provider is not available at the new date and time")
	}

	booking.Date = req.NewDate
	booking.Time = newTime
	booking.Status = models.BookingPending
	if req.Reason != "" {
		booking.CancellationReason = req.Reason
	}

	svc.logger().Info("Rescheduled booking",
		zap.String("booking_id", booking.ID),
		zap.String("date", booking.Date),
		zap.String("time", booking.Time))
	return nil
}
