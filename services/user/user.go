package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userRepo "hustlr/database/repository/user"
	"hustlr/models"
	"hustlr/utils"
)

// RegisterRequest carries a new account registration.
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	Password    string `json:"password" binding:"required,min=6"`
	Role        string `json:"role"`
}

// LoginRequest carries a credential check.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// UserService is the identity collaborator: it registers accounts and
// exchanges credentials for tokens carrying (id, role).
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*models.User, string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// DefaultUserService implements UserService.
type DefaultUserService struct {
	Repo   userRepo.UserRepository
	Tokens *utils.TokenIssuer
	Logger *zap.Logger
}

// Register creates an account with a bcrypt-hashed password.
func (svc *DefaultUserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleProvider && role != models.RoleAdmin {
		return nil, utils.InvalidInputError("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.New().String(),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    nowUTC(),
	}
	if err := svc.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, userRepo.ErrDuplicate) {
			return nil, utils.ConflictError("phone number already registered")
		}
		return nil, err
	}

	svc.Logger.Info("Registered user", zap.String("user_id", u.ID), zap.String("role", role))
	return u, nil
}

// Login verifies the credentials and issues a token with the role claim.
func (svc *DefaultUserService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	u, err := svc.Repo.GetByPhone(ctx, strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, "", utils.ForbiddenError("invalid phone number or password")
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", utils.ForbiddenError("invalid phone number or password")
	}

	token, err := svc.Tokens.Generate(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// GetByID fetches a user profile.
func (svc *DefaultUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := svc.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, utils.NotFoundError("user not found")
		}
		return nil, err
	}
	return u, nil
}
