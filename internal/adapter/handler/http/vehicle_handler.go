package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
	"github.com/voltride/rental-service/internal/core/services"
)

type VehicleHandler struct {
	vehicleService     *services.VehicleService
	maintenanceService *services.MaintenanceService
	logger             ports.LoggerPort
	metrics            ports.MetricsPort
}

func NewVehicleHandler(
	vehicleService *services.VehicleService,
	maintenanceService *services.MaintenanceService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *VehicleHandler {
	return &VehicleHandler{
		vehicleService:     vehicleService,
		maintenanceService: maintenanceService,
		logger:             logger,
		metrics:            metrics,
	}
}

type VehicleRequest struct {
	RegistrationNumber string          `json:"registration_number" binding:"required" example:"VR-1042"`
	Type               string          `json:"type" binding:"required" example:"scooter"`
	Model              string          `json:"model" binding:"required" example:"Zip 300"`
	Manufacturer       string          `json:"manufacturer" binding:"required" example:"VoltWorks"`
	RatePerHour        decimal.Decimal `json:"rate_per_hour" binding:"required" example:"6.50"`
	StationID          *uuid.UUID      `json:"station_id,omitempty"`
}

type VehicleListResponse struct {
	Vehicles []*domain.Vehicle `json:"vehicles"`
	Count    int               `json:"count"`
}

type ReportIssueRequest struct {
	Issue string `json:"issue" binding:"required" example:"Brake lever loose"`
}

// @Summary List vehicles
// @Description Returns the whole fleet
// @Tags vehicles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} VehicleListResponse "Vehicles"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list vehicles", map[string]interface{}{
			"error": err.Error(),
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, VehicleListResponse{
		Vehicles: vehicles,
		Count:    len(vehicles),
	})
}

// @Summary Get a vehicle
// @Description Returns a single vehicle by ID
// @Tags vehicles
// @Security BearerAuth
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} domain.Vehicle "Vehicle"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// @Summary Add a vehicle
// @Description Registers a new vehicle in the fleet (admin only)
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body VehicleRequest true "Vehicle data"
// @Success 201 {object} domain.Vehicle "Vehicle created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Failure 409 {object} errorResponse "Registration number already in use"
// @Router /vehicles [post]
func (h *VehicleHandler) AddVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in add vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	vehicle := &domain.Vehicle{
		RegistrationNumber: req.RegistrationNumber,
		Type:               req.Type,
		Model:              req.Model,
		Manufacturer:       req.Manufacturer,
		RatePerHour:        req.RatePerHour,
		CurrentStationID:   req.StationID,
	}

	created, err := h.vehicleService.AddVehicle(c.Request.Context(), vehicle)
	if err != nil {
		h.logger.Error("Failed to add vehicle", map[string]interface{}{
			"error":               err.Error(),
			"registration_number": req.RegistrationNumber,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Vehicle added", map[string]interface{}{
		"vehicle_id": created.ID,
	})

	c.JSON(http.StatusCreated, created)
}

// @Summary Decommission a vehicle
// @Description Permanently retires a vehicle from service (admin only)
// @Tags vehicles
// @Security BearerAuth
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} MessageResponse "Vehicle decommissioned"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Failure 409 {object} errorResponse "Vehicle already decommissioned"
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) DecommissionVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	if err := h.vehicleService.Decommission(c.Request.Context(), vehicleID); err != nil {
		h.logger.Error("Failed to decommission vehicle", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Vehicle decommissioned", map[string]interface{}{
		"vehicle_id": vehicleID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Vehicle decommissioned successfully"})
}

// @Summary Report a vehicle issue
// @Description Opens a maintenance log and assigns a technician; the rider must have an ongoing trip on the vehicle
// @Tags maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param request body ReportIssueRequest true "Issue description"
// @Success 201 {object} domain.MaintenanceLog "Maintenance log opened"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "No ongoing trip on this vehicle"
// @Failure 409 {object} errorResponse "Vehicle already in maintenance or no technician available"
// @Router /vehicles/{id}/report [post]
func (h *VehicleHandler) ReportIssue(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in report issue", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	log, err := h.maintenanceService.ReportIssue(c.Request.Context(), vehicleID, req.Issue, payload)
	if err != nil {
		h.logger.Error("Failed to report issue", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
			"user_id":    payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Issue reported", map[string]interface{}{
		"log_id":     log.ID,
		"vehicle_id": vehicleID,
	})

	c.JSON(http.StatusCreated, log)
}
