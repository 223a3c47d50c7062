package persistent

import (
	"context"
	"time"

	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/model"

	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	List(ctx context.Context, status *entity.ReportStatus) ([]*entity.Report, error)
	MarkReviewed(ctx context.Context, id string, at time.Time) error
	CountByStatus(ctx context.Context, status entity.ReportStatus) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	reportModel := ToReportModel(report)
	if err := r.db.WithContext(ctx).Create(reportModel).Error; err != nil {
		return err
	}
	report.ID = reportModel.ID
	return nil
}

func (r *reportRepository) List(ctx context.Context, status *entity.ReportStatus) ([]*entity.Report, error) {
	var reportModels []model.ReportModel
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	if err := query.Find(&reportModels).Error; err != nil {
		return nil, err
	}

	reports := make([]*entity.Report, len(reportModels))
	for i := range reportModels {
		reports[i] = ToReportEntity(&reportModels[i])
	}
	return reports, nil
}

// MarkReviewed is idempotent: the first review timestamp is kept.
func (r *reportRepository) MarkReviewed(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.ReportModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      string(entity.ReportReviewed),
			"reviewed_at": gorm.Expr("COALESCE(reviewed_at, ?)", at),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *reportRepository) CountByStatus(ctx context.Context, status entity.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ReportModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return count, err
}
