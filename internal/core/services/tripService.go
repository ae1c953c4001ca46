package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

// TripService owns the ride lifecycle. Every mutating operation runs as a
// single unit of work; rows are touched in user, vehicle, trip order.
type TripService struct {
	tripRepo    ports.TripRepository
	vehicleRepo ports.VehicleRepository
	userRepo    ports.UserRepository
	tx          ports.Transactor
	logger      ports.LoggerPort
	now         func() time.Time
}

func NewTripService(
	tripRepo ports.TripRepository,
	vehicleRepo ports.VehicleRepository,
	userRepo ports.UserRepository,
	tx ports.Transactor,
	logger ports.LoggerPort,
) *TripService {
	return &TripService{
		tripRepo:    tripRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

// Book reserves an available vehicle and opens an Ongoing trip. The
// reservation is a conditional status flip, so of two concurrent bookings
// on the same vehicle exactly one wins; the other sees a conflict. Nothing
// is charged at booking time.
func (s *TripService) Book(ctx context.Context, userID, vehicleID, startStationID uuid.UUID, durationHours int) (*domain.Trip, error) {
	if durationHours <= 0 {
		return nil, fmt.Errorf("%w: duration_hours must be positive", domain.ErrInvalidArgument)
	}

	var trip *domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
			return fmt.Errorf("user: %w", err)
		}

		if err := s.vehicleRepo.TransitionStatus(ctx, vehicleID, domain.VehicleAvailable, domain.VehicleInUse); err != nil {
			return fmt.Errorf("reserve vehicle: %w", err)
		}

		created, err := s.tripRepo.CreateTrip(ctx, &domain.Trip{
			ID:             uuid.New(),
			UserID:         userID,
			VehicleID:      vehicleID,
			StartStationID: startStationID,
			StartTime:      s.now(),
			EstimatedHours: durationHours,
			Status:         domain.TripOngoing,
			Fare:           decimal.Zero,
		})
		if err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		trip = created
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to book ride", map[string]interface{}{
			"error":      err.Error(),
			"user_id":    userID,
			"vehicle_id": vehicleID,
		})
		return nil, err
	}

	s.logger.Info("Ride booked", map[string]interface{}{
		"trip_id":    trip.ID,
		"user_id":    userID,
		"vehicle_id": vehicleID,
	})
	return trip, nil
}

// EndRide completes an Ongoing trip: it computes the fare from the elapsed
// time, the vehicle's hourly rate and the rider's plan discount resolved in
// the same transaction, debits the wallet, and returns the vehicle to the
// end station. An insufficient balance aborts the whole operation and the
// trip stays Ongoing.
func (s *TripService) EndRide(ctx context.Context, tripID, endStationID uuid.UUID, caller *domain.TokenPayload) (*domain.Trip, error) {
	var completed *domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		trip, err := s.tripRepo.GetTripByID(ctx, tripID)
		if err != nil {
			return fmt.Errorf("trip: %w", err)
		}
		if caller.Role != domain.RoleAdmin && caller.UserID != trip.UserID {
			return fmt.Errorf("%w: trip belongs to another user", domain.ErrForbidden)
		}
		if trip.Status != domain.TripOngoing {
			return fmt.Errorf("%w: trip is %s", domain.ErrConflict, trip.Status)
		}

		// Lock order: user first, then vehicle, then trip.
		if _, err := s.userRepo.LockUser(ctx, trip.UserID); err != nil {
			return fmt.Errorf("user: %w", err)
		}
		vehicle, err := s.vehicleRepo.GetVehicleForUpdate(ctx, trip.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle: %w", err)
		}

		discount, err := s.userRepo.GetDiscountRate(ctx, trip.UserID)
		if err != nil {
			return fmt.Errorf("discount: %w", err)
		}

		endTime := s.now()
		fare := domain.Fare(vehicle.RatePerHour, endTime.Sub(trip.StartTime), discount)

		if fare.IsPositive() {
			if err := s.userRepo.DebitWallet(ctx, trip.UserID, fare); err != nil {
				return fmt.Errorf("charge fare: %w", err)
			}
		}

		// A vehicle pulled into maintenance mid-trip stays there; only an
		// in-use vehicle goes back to available.
		if vehicle.Status == domain.VehicleInUse {
			if err := s.vehicleRepo.ReturnToStation(ctx, trip.VehicleID, domain.VehicleInUse, domain.VehicleAvailable, endStationID); err != nil {
				return fmt.Errorf("release vehicle: %w", err)
			}
		}

		if err := s.tripRepo.CompleteTrip(ctx, tripID, endStationID, endTime, fare); err != nil {
			return fmt.Errorf("complete trip: %w", err)
		}

		trip.Status = domain.TripCompleted
		trip.EndStationID = &endStationID
		trip.EndTime = &endTime
		trip.Fare = fare
		completed = trip
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to end ride", map[string]interface{}{
			"error":   err.Error(),
			"trip_id": tripID,
		})
		return nil, err
	}

	s.logger.Info("Ride ended", map[string]interface{}{
		"trip_id": tripID,
		"fare":    completed.Fare.String(),
	})
	return completed, nil
}

// CancelTrip aborts an Ongoing trip and frees the vehicle. Fares are only
// charged at end-of-ride, so there is nothing to refund; a second cancel
// fails on the status guard instead of moving money twice.
func (s *TripService) CancelTrip(ctx context.Context, tripID uuid.UUID, caller *domain.TokenPayload) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		trip, err := s.tripRepo.GetTripByID(ctx, tripID)
		if err != nil {
			return fmt.Errorf("trip: %w", err)
		}
		if caller.Role != domain.RoleAdmin && caller.UserID != trip.UserID {
			return fmt.Errorf("%w: trip belongs to another user", domain.ErrForbidden)
		}

		vehicle, err := s.vehicleRepo.GetVehicleForUpdate(ctx, trip.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle: %w", err)
		}
		if vehicle.Status == domain.VehicleInUse {
			if err := s.vehicleRepo.TransitionStatus(ctx, trip.VehicleID, domain.VehicleInUse, domain.VehicleAvailable); err != nil {
				return fmt.Errorf("release vehicle: %w", err)
			}
		}

		if err := s.tripRepo.CancelTrip(ctx, tripID); err != nil {
			return fmt.Errorf("cancel trip: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to cancel trip", map[string]interface{}{
			"error":   err.Error(),
			"trip_id": tripID,
		})
		return err
	}

	s.logger.Info("Trip cancelled", map[string]interface{}{
		"trip_id": tripID,
	})
	return nil
}

func (s *TripService) GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	return s.tripRepo.GetTripByID(ctx, tripID)
}

func (s *TripService) UserHistory(ctx context.Context, userID uuid.UUID, status domain.TripStatus) ([]*domain.Trip, error) {
	if status != "" && status != domain.TripOngoing && status != domain.TripCompleted && status != domain.TripCancelled {
		return nil, fmt.Errorf("%w: unknown trip status %q", domain.ErrInvalidArgument, status)
	}
	trips, err := s.tripRepo.ListUserTrips(ctx, userID, status)
	if err != nil {
		s.logger.Error("Failed to list user trips", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	return trips, nil
}
