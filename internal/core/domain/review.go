package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review holds the single rating a rider may leave on a completed trip.
// Uniqueness per trip is enforced by the store, not by a prior read.
type Review struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	UserID    uuid.UUID `json:"user_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	Rating    int       `json:"rating" validate:"min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=500"`
	CreatedAt time.Time `json:"created_at"`
}
