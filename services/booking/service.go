package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "hustlr/database/repository/booking"
	providerRepo "hustlr/database/repository/provider"
	"hustlr/models"
	"hustlr/utils"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	ProviderRepo providerRepo.ProviderRepository
	Clock        Clock
	Logger       *zap.Logger
}

func (svc *DefaultBookingService) logger() *zap.Logger {
	if svc.Logger != nil {
		return svc.Logger
	}
	return zap.L()
}

func (svc *DefaultBookingService) now() time.Time {
	if svc.Clock != nil {
		return svc.Clock.Now()
	}
	return time.Now().UTC()
}

// parseSlot validates the wire date/time formats and combines them into
// a single instant.
func parseSlot(date, timeOfDay string) (time.Time, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if _, err := time.Parse(models.TimeLayout, timeOfDay); err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	return time.Parse(models.DateLayout+" "+models.TimeLayout, date+" "+timeOfDay)
}

// slotTaken checks whether the provider already holds a pending or
// confirmed booking at exactly (date, time), excluding excludeID.
// Equality is exact; duration plays no part in conflict detection.
func (svc *DefaultBookingService) slotTaken(ctx context.Context, providerID, date, timeOfDay, excludeID string) (bool, error) {
	existing, err := svc.Repo.FindActiveBySlot(ctx, providerID, date, timeOfDay, excludeID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// ownsProvider reports whether one of the user's provider profiles is
// the given provider.
func (svc *DefaultBookingService) ownsProvider(ctx context.Context, userID, providerID string) (bool, error) {
	profiles, err := svc.ProviderRepo.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range profiles {
		if p.ID == providerID {
			return true, nil
		}
	}
	return false, nil
}

// List returns bookings scoped to the actor: customers see their own,
// providers see bookings against their profiles, admins see all.
func (svc *DefaultBookingService) List(ctx context.Context, actor Actor) ([]models.Booking, error) {
	switch actor.Role {
	case models.RoleCustomer:
		return svc.Repo.ListByCustomer(ctx, actor.ID)
	case models.RoleProvider:
		profiles, err := svc.ProviderRepo.ListByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(profiles))
		for _, p := range profiles {
			ids = append(ids, p.ID)
		}
		return svc.Repo.ListByProviders(ctx, ids)
	case models.RoleAdmin:
		return svc.Repo.ListAll(ctx)
	default:
		return nil, utils.ForbiddenError("unknown role")
	}
}
