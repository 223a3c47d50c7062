package usecase

import (
	"context"
	"errors"
	"fmt"

	"ucycle/pkg/clock"
	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/repo/persistent"
)

type ReportUseCase interface {
	File(ctx context.Context, postID string, reason entity.ReportReason) (*entity.Report, error)
	List(ctx context.Context, status string) ([]*entity.Report, error)
	MarkReviewed(ctx context.Context, id string) error
}

type reportUseCase struct {
	postRepo   persistent.PostRepository
	reportRepo persistent.ReportRepository
	stats      StatsUseCase
	events     EventPublisher
	clock      clock.Clock
	ids        clock.IDGenerator
	logger     *logger.Logger
}

func NewReportUseCase(
	postRepo persistent.PostRepository,
	reportRepo persistent.ReportRepository,
	stats StatsUseCase,
	events EventPublisher,
	clk clock.Clock,
	ids clock.IDGenerator,
	logger *logger.Logger,
) ReportUseCase {
	if events == nil {
		events = NopPublisher{}
	}
	return &reportUseCase{
		postRepo:   postRepo,
		reportRepo: reportRepo,
		stats:      stats,
		events:     events,
		clock:      clk,
		ids:        ids,
		logger:     logger,
	}
}

func (uc *reportUseCase) File(ctx context.Context, postID string, reason entity.ReportReason) (*entity.Report, error) {
	if postID == "" {
		return nil, entity.NewValidationError("post_id", "is required")
	}
	if !reason.Valid() {
		return nil, entity.NewValidationError("reason", fmt.Sprintf("unknown reason %q", reason))
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	report := &entity.Report{
		ID:        uc.ids.NewID(),
		PostID:    postID,
		Reason:    reason,
		Status:    entity.ReportPending,
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	count, err := uc.postRepo.IncrementReportCount(ctx, postID)
	if err != nil {
		// The report row stays; a retry by the caller files another one,
		// which the advisory counter tolerates.
		uc.logger.Error("[REPORT] Failed to bump report count for post %s: %v", postID, err)
		return nil, fmt.Errorf("failed to update report count: %w", err)
	}

	if err := uc.stats.Record(ctx, entity.EventReportFiled, post.Category); err != nil {
		uc.logger.Error("[STATS] %v", err)
	}
	uc.publish(ctx, entity.Event{
		Type:        entity.EventReportFiled,
		PostID:      postID,
		Category:    post.Category,
		ReportCount: count,
		At:          report.CreatedAt,
	})

	return report, nil
}

func (uc *reportUseCase) List(ctx context.Context, status string) ([]*entity.Report, error) {
	if status == "" {
		return uc.reportRepo.List(ctx, nil)
	}

	s := entity.ReportStatus(status)
	if !s.Valid() {
		return nil, entity.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	return uc.reportRepo.List(ctx, &s)
}

func (uc *reportUseCase) MarkReviewed(ctx context.Context, id string) error {
	err := uc.reportRepo.MarkReviewed(ctx, id, uc.clock.Now())
	if errors.Is(err, entity.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to mark report reviewed: %w", err)
	}
	return nil
}

func (uc *reportUseCase) publish(ctx context.Context, event entity.Event) {
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("[EVENTS] Failed to publish %s for post %s: %v", event.Type, event.PostID, err)
	}
}
