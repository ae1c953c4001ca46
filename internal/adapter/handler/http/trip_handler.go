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

type TripHandler struct {
	tripService   *services.TripService
	reviewService *services.ReviewService
	logger        ports.LoggerPort
	metrics       ports.MetricsPort
}

func NewTripHandler(
	tripService *services.TripService,
	reviewService *services.ReviewService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *TripHandler {
	return &TripHandler{
		tripService:   tripService,
		reviewService: reviewService,
		logger:        logger,
		metrics:       metrics,
	}
}

type BookTripRequest struct {
	VehicleID      uuid.UUID `json:"vehicle_id" binding:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	StartStationID uuid.UUID `json:"start_station_id" binding:"required" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	DurationHours  int       `json:"duration_hours" binding:"required" example:"2"`
}

type EndTripRequest struct {
	EndStationID uuid.UUID `json:"end_station_id" binding:"required" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
}

type TripListResponse struct {
	Trips []*domain.Trip `json:"trips"`
	Count int            `json:"count"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required" example:"5"`
	Comment string `json:"comment" example:"Smooth ride"`
}

// @Summary Book a vehicle
// @Description Starts a trip on an available vehicle at the given station
// @Tags trips
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BookTripRequest true "Booking data"
// @Success 201 {object} domain.Trip "Trip started"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Vehicle not available"
// @Router /trips [post]
func (h *TripHandler) BookTrip(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req BookTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in book trip", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	trip, err := h.tripService.Book(c.Request.Context(), payload.UserID, req.VehicleID, req.StartStationID, req.DurationHours)
	if err != nil {
		h.logger.Error("Failed to book trip", map[string]interface{}{
			"error":      err.Error(),
			"user_id":    payload.UserID,
			"vehicle_id": req.VehicleID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Trip booked", map[string]interface{}{
		"trip_id":    trip.ID,
		"user_id":    payload.UserID,
		"vehicle_id": req.VehicleID,
	})

	c.JSON(http.StatusCreated, trip)
}

// @Summary End a trip
// @Description Completes an ongoing trip, charges the fare and returns the vehicle
// @Tags trips
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body EndTripRequest true "Return station"
// @Success 200 {object} domain.Trip "Trip completed"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 402 {object} errorResponse "Insufficient wallet balance"
// @Failure 404 {object} errorResponse "Trip not found"
// @Failure 409 {object} errorResponse "Trip is not ongoing"
// @Router /trips/{id}/end [post]
func (h *TripHandler) EndTrip(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in end trip", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	trip, err := h.tripService.EndRide(c.Request.Context(), tripID, req.EndStationID, payload)
	if err != nil {
		h.logger.Error("Failed to end trip", map[string]interface{}{
			"error":   err.Error(),
			"trip_id": tripID,
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Trip completed", map[string]interface{}{
		"trip_id": trip.ID,
		"fare":    trip.Fare.String(),
	})

	c.JSON(http.StatusOK, trip)
}

// @Summary Cancel a trip
// @Description Cancels an ongoing trip without charging a fare
// @Tags trips
// @Security BearerAuth
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} MessageResponse "Trip cancelled"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Trip not found"
// @Failure 409 {object} errorResponse "Trip is not ongoing"
// @Router /trips/{id}/cancel [post]
func (h *TripHandler) CancelTrip(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	if err := h.tripService.CancelTrip(c.Request.Context(), tripID, payload); err != nil {
		h.logger.Error("Failed to cancel trip", map[string]interface{}{
			"error":   err.Error(),
			"trip_id": tripID,
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Trip cancelled", map[string]interface{}{
		"trip_id": tripID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Trip cancelled successfully"})
}

// @Summary Get a trip
// @Description Returns a single trip; riders can only see their own trips
// @Tags trips
// @Security BearerAuth
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} domain.Trip "Trip"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Trip not found"
// @Router /trips/{id} [get]
func (h *TripHandler) GetTrip(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if payload.Role != domain.RoleAdmin && payload.UserID != trip.UserID {
		h.logger.Warn("Access denied to trip", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"trip_owner":   trip.UserID.String(),
			"trip_id":      tripID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	c.JSON(http.StatusOK, trip)
}

// @Summary List own trips
// @Description Returns the caller's trip history, optionally filtered by status
// @Tags trips
// @Security BearerAuth
// @Produce json
// @Param status query string false "Trip status filter" Enums(Ongoing, Completed, Cancelled)
// @Success 200 {object} TripListResponse "Trips"
// @Failure 400 {object} errorResponse "Invalid status"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /trips [get]
func (h *TripHandler) ListMyTrips(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status := domain.TripStatus(c.Query("status"))

	trips, err := h.tripService.UserHistory(c.Request.Context(), payload.UserID, status)
	if err != nil {
		h.logger.Error("Failed to list trips", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TripListResponse{
		Trips: trips,
		Count: len(trips),
	})
}

// @Summary Review a trip
// @Description Leaves a rating and comment on a completed trip
// @Tags trips
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body ReviewRequest true "Review data"
// @Success 201 {object} domain.Review "Review created"
// @Failure 400 {object} errorResponse "Invalid rating"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Trip already reviewed or not completed"
// @Router /trips/{id}/review [post]
func (h *TripHandler) ReviewTrip(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in review trip", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	review, err := h.reviewService.AddReview(c.Request.Context(), tripID, payload, req.Rating, req.Comment)
	if err != nil {
		h.logger.Error("Failed to add review", map[string]interface{}{
			"error":   err.Error(),
			"trip_id": tripID,
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Review added", map[string]interface{}{
		"review_id": review.ID,
		"trip_id":   tripID,
	})

	c.JSON(http.StatusCreated, review)
}
