package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

const tokenTTL = 24 * time.Hour

type UserService struct {
	userRepo ports.UserRepository
	planRepo ports.MembershipRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	logger   ports.LoggerPort
	validate *validator.Validate
}

func NewUserService(
	userRepo ports.UserRepository,
	planRepo ports.MembershipRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		planRepo: planRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
		validate: validate,
	}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidArgument)
	}

	user := &domain.User{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		WalletBalance: decimal.Zero,
		Role:          domain.RoleUser,
		JoinDate:      time.Now(),
	}
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		s.logger.Error("Failed to register user", map[string]interface{}{
			"error": err.Error(),
			"email": email,
		})
		return nil, err
	}

	s.logger.Info("User registered", map[string]interface{}{
		"user_id": created.ID,
	})
	return created, nil
}

// Login verifies the credentials and issues a token carrying the
// authenticated {userID, role} pair the core trusts downstream.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Warn("Login with wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}

	token, err := s.tokens.IssueToken(&domain.TokenPayload{UserID: user.ID, Role: user.Role}, tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, user, nil
}

// GetProfile returns the user and, when present, the membership plan the
// discount comes from.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.MembershipPlan, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var plan *domain.MembershipPlan
	if user.PlanID != nil {
		plan, err = s.planRepo.GetPlanByID(ctx, *user.PlanID)
		if err != nil {
			s.logger.Warn("User references missing plan", map[string]interface{}{
				"user_id": userID,
				"plan_id": *user.PlanID,
			})
			plan = nil
		}
	}
	return user, plan, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, password *string) error {
	if name == nil && password == nil {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidArgument)
	}

	var hash *string
	if password != nil {
		if len(*password) < 8 {
			return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidArgument)
		}
		h, err := s.hasher.Hash(*password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, name, hash); err != nil {
		s.logger.Error("Failed to update profile", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return err
	}
	return nil
}
