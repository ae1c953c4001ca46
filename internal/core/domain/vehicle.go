package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleAvailable      VehicleStatus = "available"
	VehicleInUse          VehicleStatus = "in_use"
	VehicleMaintenance    VehicleStatus = "maintenance"
	VehicleDecommissioned VehicleStatus = "decommissioned"
)

// vehicleTransitions is the allowed status graph. decommissioned is
// absorbing: nothing leads out of it.
var vehicleTransitions = map[VehicleStatus][]VehicleStatus{
	VehicleAvailable:      {VehicleInUse, VehicleMaintenance, VehicleDecommissioned},
	VehicleInUse:          {VehicleAvailable, VehicleMaintenance, VehicleDecommissioned},
	VehicleMaintenance:    {VehicleAvailable, VehicleDecommissioned},
	VehicleDecommissioned: {},
}

func CanTransitionVehicle(from, to VehicleStatus) bool {
	if from == to {
		return false
	}
	for _, s := range vehicleTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Vehicle struct {
	ID                 uuid.UUID       `json:"id"`
	RegistrationNumber string          `json:"registration_number" validate:"required,max=32"`
	Type               string          `json:"type" validate:"required,max=50"`
	Model              string          `json:"model" validate:"required,max=100"`
	Manufacturer       string          `json:"manufacturer" validate:"required,max=100"`
	RatePerHour        decimal.Decimal `json:"rate_per_hour"`
	Status             VehicleStatus   `json:"status"`
	CurrentStationID   *uuid.UUID      `json:"current_station_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
