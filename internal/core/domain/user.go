package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type User struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name" validate:"required,max=100"`
	Email         string          `json:"email" validate:"required,email"`
	PasswordHash  string          `json:"-"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	Role          UserRole        `json:"role"`
	PlanID        *uuid.UUID      `json:"plan_id,omitempty"`
	JoinDate      time.Time       `json:"join_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
