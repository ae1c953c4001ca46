package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
)

type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const planColumns = `id, name, cost, duration_months, discount_rate, benefits, created_at`

func scanPlan(row interface{ Scan(dest ...interface{}) error }) (*domain.MembershipPlan, error) {
	plan := &domain.MembershipPlan{}
	err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Cost,
		&plan.DurationMonths,
		&plan.DiscountRate,
		&plan.Benefits,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *MembershipRepository) ListPlans(ctx context.Context) ([]*domain.MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans ORDER BY cost`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var plans []*domain.MembershipPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *MembershipRepository) GetPlanByID(ctx context.Context, planID uuid.UUID) (*domain.MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id = $1`

	plan, err := scanPlan(conn(ctx, r.db).QueryRowContext(ctx, query, planID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: membership plan", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return plan, nil
}
