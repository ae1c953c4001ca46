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

const stationListTTL = 5 * time.Minute

type StationService struct {
	stationRepo ports.StationRepository
	logger      ports.LoggerPort
	validate    *validator.Validate
	cache       ports.CachePort
}

func NewStationService(
	stationRepo ports.StationRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *StationService {
	return &StationService{
		stationRepo: stationRepo,
		logger:      logger,
		validate:    validate,
		cache:       cache,
	}
}

func (s *StationService) AddStation(ctx context.Context, station *domain.Station) (*domain.Station, error) {
	if err := s.validate.Struct(station); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if station.ID == uuid.Nil {
		station.ID = uuid.New()
	}
	station.IsActive = true

	created, err := s.stationRepo.CreateStation(ctx, station)
	if err != nil {
		s.logger.Error("Failed to add station", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.invalidateListing()

	s.logger.Info("Station added", map[string]interface{}{
		"station_id": created.ID,
	})
	return created, nil
}

// ListStations returns active stations with their current vehicle counts.
// Capacity is advisory; it is reported, not enforced.
func (s *StationService) ListStations(ctx context.Context) ([]*domain.StationVehicleCount, error) {
	const cacheKey = "stations:active"
	if data, err := s.cache.Get(cacheKey); err == nil {
		var cached []*domain.StationVehicleCount
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	stations, err := s.stationRepo.ListActiveStations(ctx)
	if err != nil {
		s.logger.Error("Failed to list stations", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if data, err := json.Marshal(stations); err == nil {
		if err := s.cache.Set(cacheKey, data, stationListTTL); err != nil {
			s.logger.Warn("Failed to cache station listing", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return stations, nil
}

func (s *StationService) Deactivate(ctx context.Context, stationID uuid.UUID) error {
	if err := s.stationRepo.DeactivateStation(ctx, stationID); err != nil {
		s.logger.Error("Failed to deactivate station", map[string]interface{}{
			"error":      err.Error(),
			"station_id": stationID,
		})
		return err
	}

	s.invalidateListing()

	s.logger.Info("Station deactivated", map[string]interface{}{
		"station_id": stationID,
	})
	return nil
}

func (s *StationService) invalidateListing() {
	if err := s.cache.Delete("stations:active"); err != nil {
		s.logger.Warn("Failed to invalidate station listing cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
