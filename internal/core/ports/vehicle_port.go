package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
)

type VehicleRepository interface {
	CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	GetVehicleByID(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error)

	// GetVehicleForUpdate reads the vehicle row FOR UPDATE inside the
	// current transaction, pinning its status for the rest of the unit of
	// work.
	GetVehicleForUpdate(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*domain.Vehicle, error)
	ListAvailableAtStation(ctx context.Context, stationID uuid.UUID) ([]*domain.Vehicle, error)

	// TransitionStatus applies from -> to as one conditional update and
	// fails with domain.ErrConflict when the vehicle is not in from.
	TransitionStatus(ctx context.Context, vehicleID uuid.UUID, from, to domain.VehicleStatus) error

	// ReturnToStation is TransitionStatus plus rewriting the current
	// station, used when a trip ends.
	ReturnToStation(ctx context.Context, vehicleID uuid.UUID, from, to domain.VehicleStatus, stationID uuid.UUID) error

	// Decommission moves any non-decommissioned vehicle to the absorbing
	// decommissioned state.
	Decommission(ctx context.Context, vehicleID uuid.UUID) error
}

type StationRepository interface {
	CreateStation(ctx context.Context, station *domain.Station) (*domain.Station, error)
	GetStationByID(ctx context.Context, stationID uuid.UUID) (*domain.Station, error)
	ListActiveStations(ctx context.Context) ([]*domain.StationVehicleCount, error)
	DeactivateStation(ctx context.Context, stationID uuid.UUID) error
}
