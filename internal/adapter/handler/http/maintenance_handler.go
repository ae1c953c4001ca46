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

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
	logger             ports.LoggerPort
	metrics            ports.MetricsPort
}

func NewMaintenanceHandler(
	maintenanceService *services.MaintenanceService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		logger:             logger,
		metrics:            metrics,
	}
}

type TechnicianRequest struct {
	Name           string `json:"name" binding:"required" example:"Jordan Lee"`
	Specialization string `json:"specialization" binding:"required" example:"scooter"`
}

type UpdateTechnicianRequest struct {
	Name           *string `json:"name,omitempty" example:"Jordan Lee"`
	Specialization *string `json:"specialization,omitempty" example:"ebike"`
	IsAvailable    *bool   `json:"is_available,omitempty" example:"true"`
}

type TechnicianListResponse struct {
	Technicians []*domain.Technician `json:"technicians"`
	Count       int                  `json:"count"`
}

type AssignmentListResponse struct {
	Assignments []*domain.AssignmentDetail `json:"assignments"`
	Count       int                        `json:"count"`
}

// @Summary Add a technician
// @Description Registers a new maintenance technician (admin only)
// @Tags maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TechnicianRequest true "Technician data"
// @Success 201 {object} domain.Technician "Technician created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Router /technicians [post]
func (h *MaintenanceHandler) AddTechnician(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req TechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in add technician", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	tech := &domain.Technician{
		Name:           req.Name,
		Specialization: req.Specialization,
	}

	created, err := h.maintenanceService.AddTechnician(c.Request.Context(), tech)
	if err != nil {
		h.logger.Error("Failed to add technician", map[string]interface{}{
			"error": err.Error(),
			"name":  req.Name,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Technician added", map[string]interface{}{
		"technician_id": created.ID,
	})

	c.JSON(http.StatusCreated, created)
}

// @Summary List technicians
// @Description Returns all technicians with their current workload (admin only)
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} TechnicianListResponse "Technicians"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Router /technicians [get]
func (h *MaintenanceHandler) ListTechnicians(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	technicians, err := h.maintenanceService.ListTechnicians(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list technicians", map[string]interface{}{
			"error": err.Error(),
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TechnicianListResponse{
		Technicians: technicians,
		Count:       len(technicians),
	})
}

// @Summary Update a technician
// @Description Changes technician details or availability (admin only)
// @Tags maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Technician ID"
// @Param request body UpdateTechnicianRequest true "Fields to change"
// @Success 200 {object} MessageResponse "Technician updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Failure 404 {object} errorResponse "Technician not found"
// @Router /technicians/{id} [put]
func (h *MaintenanceHandler) UpdateTechnician(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	technicianID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid technician ID")
		return
	}

	var req UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update technician", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	err = h.maintenanceService.UpdateTechnician(c.Request.Context(), technicianID, req.Name, req.Specialization, req.IsAvailable)
	if err != nil {
		h.logger.Error("Failed to update technician", map[string]interface{}{
			"error":         err.Error(),
			"technician_id": technicianID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Technician updated", map[string]interface{}{
		"technician_id": technicianID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Technician updated successfully"})
}

// @Summary Delete a technician
// @Description Removes a technician with no active assignments (admin only)
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Param id path string true "Technician ID"
// @Success 200 {object} MessageResponse "Technician deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Failure 404 {object} errorResponse "Technician not found"
// @Failure 409 {object} errorResponse "Technician has active assignments"
// @Router /technicians/{id} [delete]
func (h *MaintenanceHandler) DeleteTechnician(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	technicianID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid technician ID")
		return
	}

	if err := h.maintenanceService.DeleteTechnician(c.Request.Context(), technicianID); err != nil {
		h.logger.Error("Failed to delete technician", map[string]interface{}{
			"error":         err.Error(),
			"technician_id": technicianID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Technician deleted", map[string]interface{}{
		"technician_id": technicianID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Technician deleted successfully"})
}

// @Summary List maintenance assignments
// @Description Returns all maintenance logs with their assigned technicians (admin only)
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} AssignmentListResponse "Assignments"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Router /maintenance/assignments [get]
func (h *MaintenanceHandler) ListAssignments(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	assignments, err := h.maintenanceService.ListAssignments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list assignments", map[string]interface{}{
			"error": err.Error(),
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AssignmentListResponse{
		Assignments: assignments,
		Count:       len(assignments),
	})
}

// @Summary Complete a maintenance log
// @Description Closes the log, frees the technician and returns the vehicle to service (admin only)
// @Tags maintenance
// @Security BearerAuth
// @Produce json
// @Param id path string true "Maintenance log ID"
// @Success 200 {object} MessageResponse "Maintenance completed"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin access required"
// @Failure 404 {object} errorResponse "Log not found"
// @Failure 409 {object} errorResponse "Log already completed"
// @Router /maintenance/{id}/complete [post]
func (h *MaintenanceHandler) CompleteMaintenance(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid maintenance log ID")
		return
	}

	if err := h.maintenanceService.CompleteMaintenance(c.Request.Context(), logID); err != nil {
		h.logger.Error("Failed to complete maintenance", map[string]interface{}{
			"error":  err.Error(),
			"log_id": logID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Maintenance completed", map[string]interface{}{
		"log_id": logID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Maintenance completed successfully"})
}
