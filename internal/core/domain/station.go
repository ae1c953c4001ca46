package domain

import (
	"time"

	"github.com/google/uuid"
)

type Station struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Location  string    `json:"location" validate:"required,max=255"`
	Capacity  int       `json:"capacity" validate:"min=1"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StationVehicleCount is the listing shape for stations, with the number
// of vehicles currently parked there. Capacity is advisory only.
type StationVehicleCount struct {
	Station
	VehicleCount int `json:"vehicle_count"`
}
