package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, passwordHash *string) error

	// LockUser reads the user row FOR UPDATE. Meaningful only inside a
	// transaction; it pins the wallet row for the rest of the unit of work.
	LockUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// CreditWallet unconditionally increases the balance.
	CreditWallet(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	// DebitWallet decreases the balance only when the result stays
	// non-negative. The guard and the write are a single statement.
	DebitWallet(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error

	SetPlan(ctx context.Context, userID, planID uuid.UUID) error

	// GetDiscountRate resolves the user's current plan discount, zero when
	// the user holds no plan.
	GetDiscountRate(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}
