package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func reportRouter(h *ReportHandler) http.Handler {
	router := setupTestRouter()
	router.POST("/reports", h.CreateReport)
	router.GET("/reports", h.ListReports)
	return router
}

func TestCreateReport(t *testing.T) {
	mockUseCase := new(MockReportUseCase)
	router := reportRouter(NewReportHandler(mockUseCase, logger.NewNop()))

	mockUseCase.On("File", mock.Anything, "p1", entity.ReasonItemGone).Return(&entity.Report{
		ID:     "r1",
		PostID: "p1",
		Reason: entity.ReasonItemGone,
		Status: entity.ReportPending,
	}, nil)
	mockUseCase.On("File", mock.Anything, "missing", entity.ReasonSpam).Return(nil, entity.ErrNotFound)
	mockUseCase.On("File", mock.Anything, "p1", entity.ReportReason("boring")).Return(nil, entity.NewValidationError("reason", `unknown reason "boring"`))

	w := doJSON(t, router, "POST", "/reports", map[string]string{"post_id": "p1", "reason": "item_gone"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "r1", body["id"])
	assert.Equal(t, "pending", body["status"])

	w = doJSON(t, router, "POST", "/reports", map[string]string{"post_id": "missing", "reason": "spam"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decode(t, w)["detail"])

	w = doJSON(t, router, "POST", "/reports", map[string]string{"post_id": "p1", "reason": "boring"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "POST", "/reports", map[string]string{"reason": "spam"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReports(t *testing.T) {
	mockUseCase := new(MockReportUseCase)
	router := reportRouter(NewReportHandler(mockUseCase, logger.NewNop()))

	mockUseCase.On("List", mock.Anything, "pending").Return([]*entity.Report{{ID: "r1"}, {ID: "r2"}}, nil)
	mockUseCase.On("List", mock.Anything, "archived").Return(nil, entity.NewValidationError("status", `unknown status "archived"`))

	w := doJSON(t, router, "GET", "/reports?status=pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"r2"`)

	w = doJSON(t, router, "GET", "/reports?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
