package http

import (
	"context"
	"time"

	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/safety"
	"ucycle/services/giveaway/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) Submit(ctx context.Context, input usecase.SubmitInput) (*entity.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) List(ctx context.Context, input usecase.ListInput) ([]*entity.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Get(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) MarkCollected(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostUseCase) AdminRemove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostUseCase) AdminList(ctx context.Context) ([]*entity.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostUseCase) RunSweeper(ctx context.Context, interval time.Duration) {
	m.Called(ctx, interval)
}

func (m *MockPostUseCase) OpenGraph(ctx context.Context, id string) (*entity.OpenGraph, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OpenGraph), args.Error(1)
}

func (m *MockPostUseCase) AnalyzeImage(ctx context.Context, image string) (*safety.Suggestion, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*safety.Suggestion), args.Error(1)
}

type MockReportUseCase struct {
	mock.Mock
}

func (m *MockReportUseCase) File(ctx context.Context, postID string, reason entity.ReportReason) (*entity.Report, error) {
	args := m.Called(ctx, postID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Report), args.Error(1)
}

func (m *MockReportUseCase) List(ctx context.Context, status string) ([]*entity.Report, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Report), args.Error(1)
}

func (m *MockReportUseCase) MarkReviewed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStatsUseCase struct {
	mock.Mock
}

func (m *MockStatsUseCase) Record(ctx context.Context, event, category string) error {
	args := m.Called(ctx, event, category)
	return args.Error(0)
}

func (m *MockStatsUseCase) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

func (m *MockStatsUseCase) Daily(ctx context.Context, days int) ([]entity.DailyStats, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DailyStats), args.Error(1)
}

var (
	_ usecase.PostUseCase   = (*MockPostUseCase)(nil)
	_ usecase.ReportUseCase = (*MockReportUseCase)(nil)
	_ usecase.StatsUseCase  = (*MockStatsUseCase)(nil)
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
