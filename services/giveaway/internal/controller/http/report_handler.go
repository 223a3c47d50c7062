package http

import (
	"net/http"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportUseCase usecase.ReportUseCase
	logger        *logger.Logger
}

func NewReportHandler(reportUseCase usecase.ReportUseCase, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
		logger:        logger,
	}
}

type CreateReportRequest struct {
	PostID string `json:"post_id" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// CreateReport godoc
// @Summary      Report a post
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body CreateReportRequest true "Report (reason: item_gone, incorrect_location, unsafe, spam)"
// @Success      201  {object}  entity.Report
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.reportUseCase.File(c.Request.Context(), req.PostID, entity.ReportReason(req.Reason))
	if err != nil {
		respondError(c, h.logger, err, "Post")
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports godoc
// @Summary      List reports
// @Tags         reports
// @Produce      json
// @Param        status query string false "pending or reviewed"
// @Success      200  {array}   entity.Report
// @Failure      400  {object}  map[string]string
// @Router       /reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportUseCase.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err, "Report")
		return
	}

	c.JSON(http.StatusOK, reports)
}
