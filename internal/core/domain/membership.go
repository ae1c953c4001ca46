package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MembershipPlan carries its discount rate as data. The rate is resolved
// from the user's plan reference at charge time, never derived from the
// plan name.
type MembershipPlan struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name" validate:"required,max=100"`
	Cost           decimal.Decimal `json:"cost"`
	DurationMonths int             `json:"duration_months" validate:"min=1"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	Benefits       string          `json:"benefits"`
	CreatedAt      time.Time       `json:"created_at"`
}
