package http

import (
	"errors"
	"net/http"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"

	"github.com/gin-gonic/gin"
)

// respondError maps a usecase error to its status code. subject names the
// resource in not-found and conflict messages.
func respondError(c *gin.Context, log *logger.Logger, err error, subject string) {
	var rejected *entity.ContentRejectedError
	var invalid *entity.ValidationError

	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":   rejected.Error() + ". Please only post appropriate household items.",
			"position": rejected.Position,
			"reason":   rejected.Reason,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"detail": invalid.Error(), "field": invalid.Field})
	case errors.Is(err, entity.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": subject + " not found"})
	case errors.Is(err, entity.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": subject + " not found or no longer active"})
	case errors.Is(err, entity.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid PIN"})
	default:
		log.Error("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}
