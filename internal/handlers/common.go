package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eztechnick/exam-portal/internal/services"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondServiceError maps the service error taxonomy onto status codes:
// input problems are the caller's to fix, state conflicts mean the submit
// flow was driven out of order, and store failures are surfaced so the user
// can retry deliberately.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		var ve services.ValidationErrors
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "validation failed", Details: ve})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})
	case services.IsUnavailable(err):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
	}
}
