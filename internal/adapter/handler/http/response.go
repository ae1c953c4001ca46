package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voltride/rental-service/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

// handleServiceError maps domain errors onto HTTP statuses. Unrecognized
// errors become an opaque 500 so internals never leak to callers.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		newErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		newErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		newErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		newErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		newErrorResponse(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrBusy):
		newErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		newErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}
