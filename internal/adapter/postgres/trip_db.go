package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type TripRepository struct {
	db *sql.DB
}

func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `id, user_id, vehicle_id, start_station_id, end_station_id, start_time, end_time, estimated_hours, status, fare`

func scanTrip(row interface{ Scan(dest ...interface{}) error }) (*domain.Trip, error) {
	trip := &domain.Trip{}
	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.VehicleID,
		&trip.StartStationID,
		&trip.EndStationID,
		&trip.StartTime,
		&trip.EndTime,
		&trip.EstimatedHours,
		&trip.Status,
		&trip.Fare,
	)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (r *TripRepository) CreateTrip(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	query := `INSERT INTO trips (id, user_id, vehicle_id, start_station_id, start_time, estimated_hours, status, fare)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		trip.ID,
		trip.UserID,
		trip.VehicleID,
		trip.StartStationID,
		trip.StartTime,
		trip.EstimatedHours,
		trip.Status,
		trip.Fare,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return trip, nil
}

func (r *TripRepository) GetTripByID(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(conn(ctx, r.db).QueryRowContext(ctx, query, tripID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: trip", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return trip, nil
}

func (r *TripRepository) GetOngoingByUserAndVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE user_id = $1 AND vehicle_id = $2 AND status = 'Ongoing'`

	trip, err := scanTrip(conn(ctx, r.db).QueryRowContext(ctx, query, userID, vehicleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ongoing trip", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return trip, nil
}

func (r *TripRepository) ListUserTrips(ctx context.Context, userID uuid.UUID, status domain.TripStatus) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY start_time DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

// CompleteTrip lands only while the trip is still Ongoing; a second
// completion or a completion after cancel misses the guard and conflicts.
func (r *TripRepository) CompleteTrip(ctx context.Context, tripID, endStationID uuid.UUID, endTime time.Time, fare decimal.Decimal) error {
	query := `UPDATE trips
		SET status = 'Completed', end_station_id = $1, end_time = $2, fare = $3
		WHERE id = $4 AND status = 'Ongoing'`

	return r.execStatusGuarded(ctx, tripID, query, endStationID, endTime, fare, tripID)
}

func (r *TripRepository) CancelTrip(ctx context.Context, tripID uuid.UUID) error {
	query := `UPDATE trips SET status = 'Cancelled' WHERE id = $1 AND status = 'Ongoing'`

	return r.execStatusGuarded(ctx, tripID, query, tripID)
}

func (r *TripRepository) execStatusGuarded(ctx context.Context, tripID uuid.UUID, query string, args ...interface{}) error {
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
			`SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, tripID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return fmt.Errorf("%w: trip", domain.ErrNotFound)
		}
		return fmt.Errorf("%w: trip is not ongoing", domain.ErrConflict)
	}
	return nil
}
