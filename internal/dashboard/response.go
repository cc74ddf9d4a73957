package dashboard

import (
	"errors"
	"net/http"

	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes returned in the envelope
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal    = "INTERNAL_ERROR"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func badRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, CodeValidation, message)
}

// statusFor maps a service error to an HTTP status and envelope code
func statusFor(err error) (int, string) {
	switch {
	case services.IsClientError(err):
		return http.StatusBadRequest, CodeValidation
	case services.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, services.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// fail writes the error response for err. Internal errors are logged and
// their detail is kept out of the response.
func (s *Server) fail(c *gin.Context, err error, message string) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, status, code, message)
		return
	}
	respondError(c, status, code, err.Error())
}
