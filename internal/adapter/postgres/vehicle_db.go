package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
)

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, registration_number, type, model, manufacturer, rate_per_hour, status, current_station_id, created_at, updated_at`

func scanVehicle(row interface{ Scan(dest ...interface{}) error }) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	err := row.Scan(
		&vehicle.ID,
		&vehicle.RegistrationNumber,
		&vehicle.Type,
		&vehicle.Model,
		&vehicle.Manufacturer,
		&vehicle.RatePerHour,
		&vehicle.Status,
		&vehicle.CurrentStationID,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	query := `INSERT INTO vehicles (id, registration_number, type, model, manufacturer, rate_per_hour, status, current_station_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		vehicle.ID,
		vehicle.RegistrationNumber,
		vehicle.Type,
		vehicle.Model,
		vehicle.Manufacturer,
		vehicle.RatePerHour,
		vehicle.Status,
		vehicle.CurrentStationID,
	).Scan(&vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) GetVehicleByID(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(conn(ctx, r.db).QueryRowContext(ctx, query, vehicleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) GetVehicleForUpdate(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`

	vehicle, err := scanVehicle(conn(ctx, r.db).QueryRowContext(ctx, query, vehicleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE status <> 'decommissioned'
		ORDER BY created_at`

	return r.queryVehicles(ctx, query)
}

func (r *VehicleRepository) ListAvailableAtStation(ctx context.Context, stationID uuid.UUID) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE current_station_id = $1 AND status = 'available'
		ORDER BY created_at`

	return r.queryVehicles(ctx, query, stationID)
}

func (r *VehicleRepository) queryVehicles(ctx context.Context, query string, args ...interface{}) ([]*domain.Vehicle, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// TransitionStatus is the atomic conditional flip the availability state
// machine is built on: the update lands only when the row is still in
// from, so concurrent writers cannot both win.
func (r *VehicleRepository) TransitionStatus(ctx context.Context, vehicleID uuid.UUID, from, to domain.VehicleStatus) error {
	if !domain.CanTransitionVehicle(from, to) {
		return fmt.Errorf("%w: vehicle transition %s -> %s not allowed", domain.ErrConflict, from, to)
	}

	query := `UPDATE vehicles SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = $3`

	return r.execTransition(ctx, vehicleID, query, to, vehicleID, from)
}

func (r *VehicleRepository) ReturnToStation(ctx context.Context, vehicleID uuid.UUID, from, to domain.VehicleStatus, stationID uuid.UUID) error {
	if !domain.CanTransitionVehicle(from, to) {
		return fmt.Errorf("%w: vehicle transition %s -> %s not allowed", domain.ErrConflict, from, to)
	}

	query := `UPDATE vehicles SET status = $1, current_station_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4`

	return r.execTransition(ctx, vehicleID, query, to, stationID, vehicleID, from)
}

func (r *VehicleRepository) Decommission(ctx context.Context, vehicleID uuid.UUID) error {
	query := `UPDATE vehicles SET status = 'decommissioned', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status <> 'decommissioned'`

	return r.execTransition(ctx, vehicleID, query, vehicleID)
}

func (r *VehicleRepository) execTransition(ctx context.Context, vehicleID uuid.UUID, query string, args ...interface{}) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
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
			`SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1)`, vehicleID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return fmt.Errorf("%w: vehicle", domain.ErrNotFound)
		}
		return fmt.Errorf("%w: vehicle not in expected status", domain.ErrConflict)
	}
	return nil
}
