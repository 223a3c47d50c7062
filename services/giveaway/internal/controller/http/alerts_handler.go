package http

import (
	"context"
	"net/http"
	"strconv"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/alerts"

	"github.com/gin-gonic/gin"
)

// AlertSource lists stored moderation alerts. *alerts.Watcher satisfies it.
type AlertSource interface {
	Recent(ctx context.Context, limit int64) ([]alerts.Alert, error)
}

type AlertsHandler struct {
	source AlertSource
	logger *logger.Logger
}

func NewAlertsHandler(source AlertSource, logger *logger.Logger) *AlertsHandler {
	return &AlertsHandler{source: source, logger: logger}
}

// ListAlerts godoc
// @Summary      Posts that crossed the report threshold
// @Tags         admin
// @Produce      json
// @Security     AdminPin
// @Param        limit  query     int  false  "Maximum alerts to return (default 50)"
// @Success      200  {array}   alerts.Alert
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /admin/alerts [get]
func (h *AlertsHandler) ListAlerts(c *gin.Context) {
	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 500 {
			badRequest(c, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	list, err := h.source.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("[ALERTS] Failed to read alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, list)
}
