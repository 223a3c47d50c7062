package usecase

import (
	"context"
	"fmt"
	"time"

	"ucycle/pkg/clock"
	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/repo/persistent"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 90
)

type StatsUseCase interface {
	Record(ctx context.Context, event, category string) error
	Snapshot(ctx context.Context) (*entity.Snapshot, error)
	Daily(ctx context.Context, days int) ([]entity.DailyStats, error)
}

type statsUseCase struct {
	postRepo   persistent.PostRepository
	reportRepo persistent.ReportRepository
	statsRepo  persistent.StatsRepository
	clock      clock.Clock
	logger     *logger.Logger
}

func NewStatsUseCase(
	postRepo persistent.PostRepository,
	reportRepo persistent.ReportRepository,
	statsRepo persistent.StatsRepository,
	clk clock.Clock,
	logger *logger.Logger,
) StatsUseCase {
	return &statsUseCase{
		postRepo:   postRepo,
		reportRepo: reportRepo,
		statsRepo:  statsRepo,
		clock:      clk,
		logger:     logger,
	}
}

// Record counts one event for today's UTC date.
// Record counts event under today's UTC date. An unknown category (a post
// that could not be re-read) is counted as general so the per-category
// totals still sum to the event totals.
func (uc *statsUseCase) Record(ctx context.Context, event, category string) error {
	if category == "" {
		category = entity.CategoryGeneral
	}
	date := clock.DateKey(uc.clock.Now())
	if err := uc.statsRepo.Increment(ctx, date, event, category); err != nil {
		return fmt.Errorf("failed to record %s: %w", event, err)
	}
	return nil
}

func (uc *statsUseCase) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	if _, err := sweep(ctx, uc.postRepo, uc.clock, uc.logger); err != nil {
		return nil, err
	}

	snapshot := &entity.Snapshot{}
	statusCounts := map[entity.PostStatus]*int64{
		entity.StatusActive:    &snapshot.ActivePosts,
		entity.StatusCollected: &snapshot.CollectedPosts,
		entity.StatusExpired:   &snapshot.ExpiredPosts,
		entity.StatusRemoved:   &snapshot.RemovedPosts,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.postRepo.Count(gctx, nil)
		snapshot.TotalPosts = n
		return err
	})
	for status, dst := range statusCounts {
		g.Go(func() error {
			n, err := uc.postRepo.Count(gctx, &status)
			*dst = n
			return err
		})
	}
	g.Go(func() error {
		n, err := uc.reportRepo.CountByStatus(gctx, entity.ReportPending)
		snapshot.PendingReports = n
		return err
	})
	g.Go(func() error {
		categories, err := uc.postRepo.CountByCategory(gctx)
		snapshot.Categories = categories
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build stats snapshot: %w", err)
	}
	if snapshot.Categories == nil {
		snapshot.Categories = map[string]int64{}
	}
	return snapshot, nil
}

// Daily returns one record per day for the last days days, oldest first.
// Days without activity come back with empty counters.
func (uc *statsUseCase) Daily(ctx context.Context, days int) ([]entity.DailyStats, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	if days > MaxStatsDays {
		return nil, entity.NewValidationError("days", fmt.Sprintf("must be at most %d", MaxStatsDays))
	}

	today := uc.clock.Now().UTC()
	from := today.AddDate(0, 0, -(days - 1))

	stored, err := uc.statsRepo.ListDaily(ctx, clock.DateKey(from))
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]entity.DailyStats, len(stored))
	for _, day := range stored {
		byDate[day.Date] = day
	}

	out := make([]entity.DailyStats, 0, days)
	for d := from; !d.After(today); d = d.Add(24 * time.Hour) {
		key := clock.DateKey(d)
		day, ok := byDate[key]
		if !ok {
			day = entity.DailyStats{Date: key, Events: map[string]int64{}, Categories: map[string]int64{}}
		}
		out = append(out, day)
	}
	return out, nil
}
