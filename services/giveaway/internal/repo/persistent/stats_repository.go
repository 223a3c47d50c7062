package persistent

import (
	"context"

	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepository interface {
	// Increment bumps the event counter for date and, when category is not
	// empty, the category counter too. Both run in one transaction.
	Increment(ctx context.Context, date, event, category string) error
	ListDaily(ctx context.Context, fromDate string) ([]entity.DailyStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

var counterConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "date"}, {Name: "dimension"}, {Name: "name"}},
	DoUpdates: clause.Assignments(map[string]interface{}{
		"total": gorm.Expr("daily_stat_counters.total + ?", 1),
	}),
}

func upsertCounter(tx *gorm.DB, date, dimension, name string) error {
	return tx.Clauses(counterConflict).Create(&model.DailyStatCounterModel{
		Date:      date,
		Dimension: dimension,
		Name:      name,
		Total:     1,
	}).Error
}

func (r *statsRepository) Increment(ctx context.Context, date, event, category string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCounter(tx, date, model.DimensionEvent, event); err != nil {
			return err
		}
		if category == "" {
			return nil
		}
		return upsertCounter(tx, date, model.DimensionCategory, category)
	})
}

func (r *statsRepository) ListDaily(ctx context.Context, fromDate string) ([]entity.DailyStats, error) {
	var rows []model.DailyStatCounterModel
	err := r.db.WithContext(ctx).
		Where("date >= ?", fromDate).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ToDailyStats(rows), nil
}
