package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
)

type StationRepository struct {
	db *sql.DB
}

func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) CreateStation(ctx context.Context, station *domain.Station) (*domain.Station, error) {
	query := `INSERT INTO stations (id, name, location, capacity, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		station.ID,
		station.Name,
		station.Location,
		station.Capacity,
		station.IsActive,
	).Scan(&station.CreatedAt, &station.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return station, nil
}

func (r *StationRepository) GetStationByID(ctx context.Context, stationID uuid.UUID) (*domain.Station, error) {
	query := `SELECT id, name, location, capacity, is_active, created_at, updated_at
		FROM stations WHERE id = $1`

	station := &domain.Station{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, stationID).Scan(
		&station.ID,
		&station.Name,
		&station.Location,
		&station.Capacity,
		&station.IsActive,
		&station.CreatedAt,
		&station.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: station", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return station, nil
}

func (r *StationRepository) ListActiveStations(ctx context.Context) ([]*domain.StationVehicleCount, error) {
	query := `SELECT s.id, s.name, s.location, s.capacity, s.is_active, s.created_at, s.updated_at,
			COUNT(v.id) AS vehicle_count
		FROM stations s
		LEFT JOIN vehicles v ON v.current_station_id = s.id AND v.status <> 'decommissioned'
		WHERE s.is_active
		GROUP BY s.id
		ORDER BY s.name`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var stations []*domain.StationVehicleCount
	for rows.Next() {
		s := &domain.StationVehicleCount{}
		err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Location,
			&s.Capacity,
			&s.IsActive,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.VehicleCount,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *StationRepository) DeactivateStation(ctx context.Context, stationID uuid.UUID) error {
	query := `UPDATE stations SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, stationID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: station", domain.ErrNotFound)
	}
	return nil
}
