package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
	"github.com/voltride/rental-service/internal/core/services"
)

type UserHandler struct {
	userService   *services.UserService
	walletService *services.WalletService
	logger        ports.LoggerPort
	metrics       ports.MetricsPort
}

func NewUserHandler(
	userService *services.UserService,
	walletService *services.WalletService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		walletService: walletService,
		logger:        logger,
		metrics:       metrics,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Alice Smith"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" example:"Alice Jones"`
	Password *string `json:"password,omitempty" example:"new-s3cret-pass"`
}

type ProfileResponse struct {
	User *domain.User           `json:"user"`
	Plan *domain.MembershipPlan `json:"plan,omitempty"`
}

type WalletTopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required" example:"50.00"`
}

type WalletBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// @Summary Register a new rider
// @Description Creates a user account with an empty wallet
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} domain.User "User created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 409 {object} errorResponse "Email already registered"
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in register", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Failed to register user", map[string]interface{}{
			"error": err.Error(),
			"email": req.Email,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusCreated, user)
}

// @Summary Log in
// @Description Verifies credentials and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse "Token issued"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in login", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", map[string]interface{}{
			"email": req.Email,
			"ip":    c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  user,
	})
}

// @Summary Get own profile
// @Description Returns the authenticated user with their membership plan
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ProfileResponse "Profile"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, plan, err := h.userService.GetProfile(c.Request.Context(), payload.UserID)
	if err != nil {
		h.logger.Error("Failed to get profile", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User: user,
		Plan: plan,
	})
}

// @Summary Update own profile
// @Description Changes the user's name and/or password
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} MessageResponse "Profile updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update profile", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.userService.UpdateProfile(c.Request.Context(), payload.UserID, req.Name, req.Password); err != nil {
		h.logger.Error("Failed to update profile", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Profile updated", map[string]interface{}{
		"user_id": payload.UserID,
	})

	c.JSON(http.StatusOK, MessageResponse{Message: "Profile updated successfully"})
}

// @Summary Top up wallet
// @Description Credits the caller's wallet balance
// @Tags wallet
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body WalletTopUpRequest true "Amount to add"
// @Success 200 {object} WalletBalanceResponse "New balance"
// @Failure 400 {object} errorResponse "Invalid amount"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /wallet/topup [post]
func (h *UserHandler) TopUpWallet(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req WalletTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in wallet top up", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.walletService.Credit(c.Request.Context(), payload.UserID, req.Amount); err != nil {
		h.logger.Error("Failed to top up wallet", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.logger.Info("Wallet credited", map[string]interface{}{
		"user_id": payload.UserID,
		"amount":  req.Amount.String(),
	})

	c.JSON(http.StatusOK, WalletBalanceResponse{Balance: balance})
}

// @Summary Get wallet balance
// @Description Returns the caller's current wallet balance
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Success 200 {object} WalletBalanceResponse "Balance"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /wallet [get]
func (h *UserHandler) GetBalance(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), payload.UserID)
	if err != nil {
		h.logger.Error("Failed to get balance", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, WalletBalanceResponse{Balance: balance})
}
