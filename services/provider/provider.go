package provider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	providerRepo "hustlr/database/repository/provider"
	"hustlr/models"
	"hustlr/utils"
)

// RegisterRequest carries a new provider profile registration.
type RegisterRequest struct {
	ServiceType  string            `json:"service_type" binding:"required"`
	Location     string            `json:"location" binding:"required"`
	Description  string            `json:"description"`
	HourlyRate   float64           `json:"hourly_rate"`
	Availability map[string]string `json:"availability"`
}

// SearchRequest carries a provider search.
type SearchRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
	Location    string `json:"location" binding:"required"`
	MaxResults  int64  `json:"max_results"`
}

// ProviderService is the provider directory: registration, lookup,
// verified search, and the admin verification switch.
type ProviderService interface {
	Register(ctx context.Context, userID, role string, req RegisterRequest) (*models.Provider, error)
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	ListByUser(ctx context.Context, userID string) ([]models.Provider, error)
	Search(ctx context.Context, req SearchRequest) ([]models.Provider, error)
	Verify(ctx context.Context, actorRole, providerID string) error
}

// DefaultProviderService implements ProviderService.
type DefaultProviderService struct {
	Repo   providerRepo.ProviderRepository
	Logger *zap.Logger
}

// Register creates an unverified provider profile for a provider-role user.
func (svc *DefaultProviderService) Register(ctx context.Context, userID, role string, req RegisterRequest) (*models.Provider, error) {
	if role != models.RoleProvider {
		return nil, utils.ForbiddenError("only provider accounts can register provider profiles")
	}

	now := time.Now().UTC()
	p := &models.Provider{
		ID:           uuid.New().String(),
		UserID:       userID,
		ServiceType:  req.ServiceType,
		Location:     req.Location,
		Description:  req.Description,
		HourlyRate:   req.HourlyRate,
		Availability: req.Availability,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.Repo.Create(ctx, p); err != nil {
		return nil, err
	}

	svc.Logger.Info("Registered provider profile",
		zap.String("provider_id", p.ID),
		zap.String("user_id", userID),
		zap.String("service_type", req.ServiceType))
	return p, nil
}

// GetByID fetches a provider profile.
func (svc *DefaultProviderService) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	p, err := svc.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, utils.NotFoundError("provider not found")
		}
		return nil, err
	}
	return p, nil
}

// ListByUser returns all provider profiles owned by a user.
func (svc *DefaultProviderService) ListByUser(ctx context.Context, userID string) ([]models.Provider, error) {
	return svc.Repo.ListByUser(ctx, userID)
}

// Search returns verified providers matching service type and location.
func (svc *DefaultProviderService) Search(ctx context.Context, req SearchRequest) ([]models.Provider, error) {
	limit := req.MaxResults
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return svc.Repo.Search(ctx, req.ServiceType, req.Location, true, limit)
}

// Verify marks a provider profile as verified. Admin only.
func (svc *DefaultProviderService) Verify(ctx context.Context, actorRole, providerID string) error {
	if actorRole != models.RoleAdmin {
		return utils.ForbiddenError("only admins can verify providers")
	}
	if err := svc.Repo.SetVerified(ctx, providerID, true); err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return utils.NotFoundError("provider not found")
		}
		return err
	}
	svc.Logger.Info("Verified provider", zap.String("provider_id", providerID))
	return nil
}
