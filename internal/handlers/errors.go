package handlers

import (
	"net/http"
	"strconv"

	"delegation-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperr.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case apperr.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case apperr.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden
	case apperr.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Unexpected errors are recorded on the context
// for the request logger and answered with fallback instead of the raw message.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseID reads a numeric path parameter, answering 400 when it is not one.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
