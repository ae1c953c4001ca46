package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TripStatus string

const (
	TripOngoing   TripStatus = "Ongoing"
	TripCompleted TripStatus = "Completed"
	TripCancelled TripStatus = "Cancelled"
)

type Trip struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	VehicleID      uuid.UUID       `json:"vehicle_id"`
	StartStationID uuid.UUID       `json:"start_station_id"`
	EndStationID   *uuid.UUID      `json:"end_station_id,omitempty"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        *time.Time      `json:"end_time,omitempty"`
	EstimatedHours int             `json:"estimated_hours"`
	Status         TripStatus      `json:"status"`
	Fare           decimal.Decimal `json:"fare"`
}

// Fare computes the amount charged for a ride: elapsed time at the hourly
// rate, reduced by the membership discount rate, rounded to cents. Elapsed
// time below zero counts as zero.
func Fare(ratePerHour decimal.Decimal, elapsed time.Duration, discountRate decimal.Decimal) decimal.Decimal {
	if elapsed < 0 {
		elapsed = 0
	}
	hours := decimal.NewFromFloat(elapsed.Hours())
	base := ratePerHour.Mul(hours)
	final := base.Mul(decimal.NewFromInt(1).Sub(discountRate))
	return final.Round(2)
}
