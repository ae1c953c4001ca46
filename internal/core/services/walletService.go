package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

// WalletService is the ledger: every balance change goes through it and the
// balance can never go negative.
type WalletService struct {
	userRepo ports.UserRepository
	logger   ports.LoggerPort
}

func NewWalletService(userRepo ports.UserRepository, logger ports.LoggerPort) *WalletService {
	return &WalletService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *WalletService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}

	if err := s.userRepo.CreditWallet(ctx, userID, amount); err != nil {
		s.logger.Error("Failed to credit wallet", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return err
	}

	s.logger.Info("Wallet credited", map[string]interface{}{
		"user_id": userID,
		"amount":  amount.String(),
	})
	return nil
}

// Debit charges the wallet with a single conditional decrement; the balance
// check and the write are never separate statements, so two concurrent
// debits cannot jointly overdraw.
func (s *WalletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}

	if err := s.userRepo.DebitWallet(ctx, userID, amount); err != nil {
		s.logger.Error("Failed to debit wallet", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return err
	}

	s.logger.Info("Wallet debited", map[string]interface{}{
		"user_id": userID,
		"amount":  amount.String(),
	})
	return nil
}

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.WalletBalance, nil
}
