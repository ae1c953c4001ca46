package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
	"github.com/voltride/rental-service/internal/core/services"
)

type StationHandler struct {
	stationService *services.StationService
	vehicleService *services.VehicleService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

func NewStationHandler(
	stationService *services.StationService,
	vehicleService *services.VehicleService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *StationHandler {
	return &StationHandler{
		stationService: stationService,
		vehicleService: vehicleService,
		logger:         logger,
		metrics:        metrics,
	}
}

type StationRequest struct {
	Name     string `json:"name" binding:"required" example:"Central Plaza"`
	Location string `json:"location" binding:"required" example:"12 Main St"`
	Capacity int    `json:"capacity" binding:"required" example:"20"`
}

type StationListResponse struct {
	Stations []*domain.StationVehicleCount `json:"stations"`
	Count    int                           `json:"count"`
}

// @Summary List stations
// @Description Returns all active stations with their parked vehicle counts
// @Tags stations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} StationListResponse "Stations"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /stations [get]
func (h *StationHandler) ListStations(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	stations, err := h.stationService.ListStations(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list stations", map[string]interface{}{
			"error": err.Error(),
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StationListResponse{
		Stations: stations,
		Count:    len(stations),
	})
}

// @Summary List available vehicles at a station
// @Description Returns vehicles parked at the station that can be booked
// @Tags stations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Station ID"
// @Success 200 {object} VehicleListResponse "Available vehicles"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Station not found"
// @Router /stations/{id}/vehicles [get]
func (h *StationHandler) ListStationVehicles(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid station ID")
		return
	}

	vehicles, err := h.vehicleService.ListAvailableAtStation(c.Request.Context(), stationID)
	if err != nil {
		h.logger.Error("Failed to list station vehicles", map[string]interface{}{
			"error":      err.Error(),
			"station_id": stationID,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, VehicleListResponse{
		Vehicles: vehicles,
		Count:    len(vehicles),
	})
}

// @Summary Add a station
// @Description Creates a new station (admin only)
// @Tags stations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body StationRequest true "Station data"
// @Success 201 {object} domain.Station "Station created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Router /stations [post]
func (h *StationHandler) AddStation(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req StationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in add station", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	station := &domain.Station{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	}

	created, err := h.stationService.AddStation(c.Request.Context(), station)
	if err != nil {
		h.logger.Error("Failed to add station", map[string]interface{}{
			"error": err.Error(),
			"name":  req.Name,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Station added", map[string]interface{}{
		"station_id": created.ID,
	})

	c.JSON(http.StatusCreated, created)
}

// @Summary Deactivate a station
// @Description Removes a station from the active listing (admin only)
// @Tags stations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Station ID"
// @Success 200 {object} MessageResponse "Station deactivated"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Failure 404 {object} errorResponse "Station not found"
// @Router /stations/{id} [delete]
func (h *StationHandler) DeactivateStation(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid station ID")
		return
	}

	if err := h.stationService.Deactivate(c.Request.Context(), stationID); err != nil {
		h.logger.Error("Failed to deactivate station", map[string]interface{}{
			"error":      err.Error(),
			"station_id": stationID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Station deactivated", map[string]interface{}{
		"station_id": stationID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Station deactivated successfully"})
}
