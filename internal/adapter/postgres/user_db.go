package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, wallet_balance, role, plan_id, join_date, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...interface{}) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.WalletBalance,
		&user.Role,
		&user.PlanID,
		&user.JoinDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (id, name, email, password_hash, wallet_balance, role, join_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.WalletBalance,
		user.Role,
		user.JoinDate,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) LockUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, passwordHash *string) error {
	query := `UPDATE users
		SET name = COALESCE($1, name),
			password_hash = COALESCE($2, password_hash),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, name, passwordHash, userID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) CreditWallet(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE users
		SET wallet_balance = wallet_balance + $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, amount, userID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return nil
}

// DebitWallet guards and decrements in one statement. A zero row count with
// the user present means the balance would have gone negative.
func (r *UserRepository) DebitWallet(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE users
		SET wallet_balance = wallet_balance - $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND wallet_balance >= $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, amount, userID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := conn(ctx, r.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return fmt.Errorf("%w: balance below %s", domain.ErrInsufficientFunds, amount)
	}
	return nil
}

func (r *UserRepository) SetPlan(ctx context.Context, userID, planID uuid.UUID) error {
	query := `UPDATE users SET plan_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, planID, userID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return nil
}

// GetDiscountRate resolves the discount for the user's current plan, zero
// when no plan is assigned. Reading it through the join keeps the rate
// consistent with the plan at charge time.
func (r *UserRepository) GetDiscountRate(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(mp.discount_rate, 0)
		FROM users u
		LEFT JOIN membership_plans mp ON u.plan_id = mp.id
		WHERE u.id = $1`

	var rate decimal.Decimal
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return decimal.Zero, mapError(err)
	}
	return rate, nil
}
