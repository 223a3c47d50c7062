package http

import (
	"net/http"
	"strconv"

	"ucycle/pkg/jwt"
	"ucycle/pkg/logger"
	"ucycle/pkg/middleware"
	"ucycle/services/giveaway/internal/usecase"

	"github.com/gin-gonic/gin"
)

// TokenIssuer mints admin session tokens. *jwt.Service satisfies it.
type TokenIssuer interface {
	GenerateToken(subject, role string) (string, error)
}

type AdminHandler struct {
	postUseCase   usecase.PostUseCase
	reportUseCase usecase.ReportUseCase
	statsUseCase  usecase.StatsUseCase
	pins          middleware.AdminAuthorizer
	tokens        TokenIssuer
	logger        *logger.Logger
}

func NewAdminHandler(
	postUseCase usecase.PostUseCase,
	reportUseCase usecase.ReportUseCase,
	statsUseCase usecase.StatsUseCase,
	pins middleware.AdminAuthorizer,
	tokens TokenIssuer,
	logger *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		postUseCase:   postUseCase,
		reportUseCase: reportUseCase,
		statsUseCase:  statsUseCase,
		pins:          pins,
		tokens:        tokens,
		logger:        logger,
	}
}

type VerifyRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// Verify godoc
// @Summary      Verify the admin PIN
// @Description  Returns a short-lived bearer token usable instead of the PIN on admin routes.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body VerifyRequest true "Admin PIN"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /admin/verify [post]
func (h *AdminHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || !h.pins.Authorize(req.Pin) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid PIN"})
		return
	}

	token, err := h.tokens.GenerateToken("admin", jwt.RoleAdmin)
	if err != nil {
		h.logger.Error("[ADMIN] Failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true, "token": token})
}

// RemovePost godoc
// @Summary      Remove a post
// @Tags         admin
// @Produce      json
// @Security     AdminPin
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/posts/{id} [delete]
func (h *AdminHandler) RemovePost(c *gin.Context) {
	if err := h.postUseCase.AdminRemove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post removed"})
}

// MarkReportReviewed godoc
// @Summary      Mark a report as reviewed
// @Tags         admin
// @Produce      json
// @Security     AdminPin
// @Param        id path string true "Report ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/reports/{id}/reviewed [patch]
func (h *AdminHandler) MarkReportReviewed(c *gin.Context) {
	if err := h.reportUseCase.MarkReviewed(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Report")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report marked as reviewed"})
}

// Stats godoc
// @Summary      Current statistics
// @Tags         admin
// @Produce      json
// @Security     AdminPin
// @Success      200  {object}  entity.Snapshot
// @Failure      401  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	snapshot, err := h.statsUseCase.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Stats")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// DailyStats godoc
// @Summary      Daily event and category counters
// @Tags         admin
// @Produce      json
// @Security     AdminPin
// @Param        days query int false "Number of days, newest last (default 7, max 90)"
// @Success      200  {array}   entity.DailyStats
// @Failure      400  {object}  map[string]string
// @Router       /admin/stats/daily [get]
func (h *AdminHandler) DailyStats(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "days must be an integer")
			return
		}
		days = n
	}

	stats, err := h.statsUseCase.Daily(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err, "Stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListAllPosts godoc
// @Summary      List posts in every status
// @Tags         admin
// @Produce      json
// @Security     AdminPin
// @Success      200  {array}   entity.Post
// @Failure      401  {object}  map[string]string
// @Router       /admin/posts [get]
func (h *AdminHandler) ListAllPosts(c *gin.Context) {
	posts, err := h.postUseCase.AdminList(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusOK, posts)
}
