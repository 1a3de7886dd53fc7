package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	bookingRepo "hustlr/database/repository/booking"
	"hustlr/models"
	"hustlr/utils"
)

// SetStatus advances the booking state machine. Providers confirm and
// complete their own bookings; customers cancel their own. Completed
// and cancelled are terminal.
func (svc *DefaultBookingService) SetStatus(ctx context.Context, actor Actor, bookingID, newStatus string) (*models.Booking, error) {
	if !models.ValidBookingStatus(newStatus) {
		return nil, utils.InvalidInputError("invalid status")
	}
	target := models.BookingStatus(newStatus)

	booking, err := svc.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, utils.NotFoundError("booking not found")
		}
		return nil, err
	}

	if err := svc.authorizeTransition(ctx, actor, booking, target); err != nil {
		return nil, err
	}
	if err := checkTransition(booking.Status, target); err != nil {
		return nil, err
	}

	booking.Status = target
	booking.UpdatedAt = svc.now()
	if err := svc.Repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	svc.logger().Info("Updated booking status",
		zap.String("booking_id", booking.ID),
		zap.String("status", newStatus),
		zap.String("actor_id", actor.ID))
	return booking, nil
}

// authorizeTransition checks that the actor owns the side of the
// booking permitted to request the target status.
func (svc *DefaultBookingService) authorizeTransition(ctx context.Context, actor Actor, booking *models.Booking, target models.BookingStatus) error {
	switch target {
	case models.BookingConfirmed, models.BookingCompleted:
		if actor.Role != models.RoleProvider {
			return utils.ForbiddenError("not authorized to update this booking")
		}
		owns, err := svc.ownsProvider(ctx, actor.ID, booking.ProviderID)
		if err != nil {
			return err
		}
		if !owns {
			return utils.ForbiddenError("not authorized to update this booking")
		}
		return nil
	case models.BookingCancelled:
		switch actor.Role {
		case models.RoleCustomer:
			if booking.CustomerID != actor.ID {
				return utils.ForbiddenError("not authorized to update this booking")
			}
			return nil
		case models.RoleProvider:
			owns, err := svc.ownsProvider(ctx, actor.ID, booking.ProviderID)
			if err != nil {
				return err
			}
			if !owns {
				return utils.ForbiddenError("not authorized to update this booking")
			}
			return nil
		}
		return utils.ForbiddenError("not authorized to update this booking")
	default:
		// Nobody moves a booking back to pending by hand; reschedule is
		// the only path that resets it.
		return utils.InvalidStateError("cannot set booking back to pending")
	}
}

// checkTransition enforces pending -> confirmed -> completed, with
// cancelled reachable from pending or confirmed.
func checkTransition(current, target models.BookingStatus) error {
	if current.Terminal() {
		return utils.InvalidStateError("booking is already " + string(current))
	}
	switch target {
	case models.BookingConfirmed:
		if current != models.BookingPending {
			return utils.InvalidStateError("only pending bookings can be confirmed")
		}
	case models.BookingCompleted:
		if current != models.BookingConfirmed {
			return utils.InvalidStateError("only confirmed bookings can be completed")
		}
	case models.BookingCancelled:
		// pending or confirmed, both fine here.
	}
	return nil
}
