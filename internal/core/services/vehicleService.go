package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

// Listing caches are short-lived: availability changes with every booking,
// so a stale entry only survives a few seconds.
const vehicleListTTL = 30 * time.Second

type VehicleService struct {
	vehicleRepo ports.VehicleRepository
	logger      ports.LoggerPort
	validate    *validator.Validate
	cache       ports.CachePort
}

func NewVehicleService(
	vehicleRepo ports.VehicleRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		logger:      logger,
		validate:    validate,
		cache:       cache,
	}
}

func (s *VehicleService) AddVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if err := s.validate.Struct(vehicle); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if !vehicle.RatePerHour.IsPositive() {
		return nil, fmt.Errorf("%w: rate_per_hour must be positive", domain.ErrInvalidArgument)
	}
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	vehicle.Status = domain.VehicleAvailable

	created, err := s.vehicleRepo.CreateVehicle(ctx, vehicle)
	if err != nil {
		s.logger.Error("Failed to add vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.invalidateListings(vehicle.CurrentStationID)

	s.logger.Info("Vehicle added", map[string]interface{}{
		"vehicle_id": created.ID,
	})
	return created, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetVehicleByID(ctx, vehicleID)
}

// ListVehicles returns every non-decommissioned vehicle, serving from
// cache when a recent listing exists.
func (s *VehicleService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	const cacheKey = "vehicles:all"
	if data, err := s.cache.Get(cacheKey); err == nil {
		var cached []*domain.Vehicle
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	vehicles, err := s.vehicleRepo.ListVehicles(ctx)
	if err != nil {
		s.logger.Error("Failed to list vehicles", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if data, err := json.Marshal(vehicles); err == nil {
		if err := s.cache.Set(cacheKey, data, vehicleListTTL); err != nil {
			s.logger.Warn("Failed to cache vehicle listing", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return vehicles, nil
}

func (s *VehicleService) ListAvailableAtStation(ctx context.Context, stationID uuid.UUID) ([]*domain.Vehicle, error) {
	cacheKey := fmt.Sprintf("station_vehicles:%s", stationID)
	if data, err := s.cache.Get(cacheKey); err == nil {
		var cached []*domain.Vehicle
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	vehicles, err := s.vehicleRepo.ListAvailableAtStation(ctx, stationID)
	if err != nil {
		s.logger.Error("Failed to list station vehicles", map[string]interface{}{
			"error":      err.Error(),
			"station_id": stationID,
		})
		return nil, err
	}

	if data, err := json.Marshal(vehicles); err == nil {
		if err := s.cache.Set(cacheKey, data, vehicleListTTL); err != nil {
			s.logger.Warn("Failed to cache station vehicle listing", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return vehicles, nil
}

// Decommission permanently retires a vehicle; there is no way back out of
// the decommissioned state.
func (s *VehicleService) Decommission(ctx context.Context, vehicleID uuid.UUID) error {
	vehicle, err := s.vehicleRepo.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return err
	}

	if err := s.vehicleRepo.Decommission(ctx, vehicleID); err != nil {
		s.logger.Error("Failed to decommission vehicle", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		return err
	}

	s.invalidateListings(vehicle.CurrentStationID)

	s.logger.Info("Vehicle decommissioned", map[string]interface{}{
		"vehicle_id": vehicleID,
	})
	return nil
}

func (s *VehicleService) invalidateListings(stationID *uuid.UUID) {
	if err := s.cache.Delete("vehicles:all"); err != nil {
		s.logger.Warn("Failed to invalidate vehicle listing cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if stationID != nil {
		if err := s.cache.Delete(fmt.Sprintf("station_vehicles:%s", *stationID)); err != nil {
			s.logger.Warn("Failed to invalidate station vehicle cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
