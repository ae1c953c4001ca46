package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

type MembershipService struct {
	planRepo ports.MembershipRepository
	userRepo ports.UserRepository
	tx       ports.Transactor
	logger   ports.LoggerPort
}

func NewMembershipService(
	planRepo ports.MembershipRepository,
	userRepo ports.UserRepository,
	tx ports.Transactor,
	logger ports.LoggerPort,
) *MembershipService {
	return &MembershipService{
		planRepo: planRepo,
		userRepo: userRepo,
		tx:       tx,
		logger:   logger,
	}
}

func (s *MembershipService) ListPlans(ctx context.Context) ([]*domain.MembershipPlan, error) {
	return s.planRepo.ListPlans(ctx)
}

// Purchase debits the plan cost and assigns the plan in one transaction;
// the plan is never assigned without the debit landing, or vice versa.
func (s *MembershipService) Purchase(ctx context.Context, userID, planID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		plan, err := s.planRepo.GetPlanByID(ctx, planID)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}

		if _, err := s.userRepo.LockUser(ctx, userID); err != nil {
			return fmt.Errorf("user: %w", err)
		}
		if plan.Cost.IsPositive() {
			if err := s.userRepo.DebitWallet(ctx, userID, plan.Cost); err != nil {
				return fmt.Errorf("charge plan: %w", err)
			}
		}
		if err := s.userRepo.SetPlan(ctx, userID, planID); err != nil {
			return fmt.Errorf("assign plan: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to purchase membership", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
			"plan_id": planID,
		})
		return err
	}

	s.logger.Info("Membership purchased", map[string]interface{}{
		"user_id": userID,
		"plan_id": planID,
	})
	return nil
}
