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

type MembershipHandler struct {
	membershipService *services.MembershipService
	logger            ports.LoggerPort
	metrics           ports.MetricsPort
}

func NewMembershipHandler(
	membershipService *services.MembershipService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		logger:            logger,
		metrics:           metrics,
	}
}

type PlanListResponse struct {
	Plans []*domain.MembershipPlan `json:"plans"`
	Count int                      `json:"count"`
}

type PurchasePlanRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
}

// @Summary List membership plans
// @Description Returns all purchasable plans
// @Tags memberships
// @Security BearerAuth
// @Produce json
// @Success 200 {object} PlanListResponse "Plans"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /memberships [get]
func (h *MembershipHandler) ListPlans(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	plans, err := h.membershipService.ListPlans(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list plans", map[string]interface{}{
			"error": err.Error(),
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlanListResponse{
		Plans: plans,
		Count: len(plans),
	})
}

// @Summary Purchase a membership plan
// @Description Debits the plan cost from the wallet and activates the plan
// @Tags memberships
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PurchasePlanRequest true "Plan to purchase"
// @Success 200 {object} MessageResponse "Plan activated"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 402 {object} errorResponse "Insufficient wallet balance"
// @Failure 404 {object} errorResponse "Plan not found"
// @Router /memberships/purchase [post]
func (h *MembershipHandler) PurchasePlan(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PurchasePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in purchase plan", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.membershipService.Purchase(c.Request.Context(), payload.UserID, req.PlanID); err != nil {
		h.logger.Error("Failed to purchase plan", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
			"plan_id": req.PlanID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Plan purchased", map[string]interface{}{
		"user_id": payload.UserID,
		"plan_id": req.PlanID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Plan activated successfully"})
}
