package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transit/internal/repository"
	"transit/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidMemberID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInvalidPickupTime),
		errors.Is(err, service.ErrInvalidMileage):
		return http.StatusBadRequest

	// State conflicts - the caller should re-fetch and reconsider
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrMissingDriver),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrRideUnderway),
		errors.Is(err, service.ErrReturnAlreadyScheduled),
		errors.Is(err, service.ErrNotRoundTrip):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
