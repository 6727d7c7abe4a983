package httputil

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mshekhar/portfolio-api/pkg/apperror"
)

// Response wraps all successful API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	ResetAt   string      `json:"reset_at,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a success response for newly created resources
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends a failure response with the status implied by
// the error's kind: validation 400, not-found 404, rate-limited 429
// (carrying the window reset time), everything else 500.
func RespondWithError(c *gin.Context, err error) {
	body := ErrorResponse{
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Error = appErr.Message
		body.Timestamp = appErr.Timestamp.UTC().Format(time.RFC3339)
		if !appErr.ResetAt.IsZero() {
			body.ResetAt = appErr.ResetAt.UTC().Format(time.RFC3339)
		}
	}

	c.JSON(StatusForKind(apperror.KindOf(err)), body)
}

// RespondWithValidation sends a 400 carrying every violation found.
func RespondWithValidation(c *gin.Context, violations []string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     "validation failed",
		Details:   violations,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// StatusForKind maps an error kind to its HTTP status
func StatusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
