package persistent

import (
	"context"
	"errors"
	"time"

	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows List. Empty Statuses means every status.
type PostFilter struct {
	Statuses []entity.PostStatus
	Category string
}

// PostRepository covers the document-store operations the lifecycle needs.
// Every state change is a single conditional UPDATE so concurrent handlers
// cannot lose or reorder transitions.
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*entity.Post, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	MarkCollected(ctx context.Context, id string, at time.Time) (bool, error)
	MarkRemoved(ctx context.Context, id string, at time.Time) (bool, error)
	IncrementReportCount(ctx context.Context, id string) (int, error)
	Count(ctx context.Context, status *entity.PostStatus) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

var privateColumns = []string{"true_latitude", "true_longitude"}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("post_images.position ASC")
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := postModel.Images
		postModel.Images = nil

		if err := tx.Create(postModel).Error; err != nil {
			return err
		}

		for i := range images {
			images[i].PostID = postModel.ID
			images[i].ID = uuid.New().String()
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}

		post.ID = postModel.ID
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var postModel model.PostModel
	err := r.db.WithContext(ctx).
		Omit(privateColumns...).
		Preload("Images", orderedImages).
		Where("id = ?", id).
		First(&postModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*entity.Post, error) {
	var postModels []model.PostModel
	query := r.db.WithContext(ctx).
		Omit(privateColumns...).
		Preload("Images", orderedImages).
		Order("created_at DESC")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

// ExpireDue moves every active post whose expiry has passed to expired. The
// status guard in the WHERE clause makes repeated or overlapping runs no-ops.
func (r *postRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("status = ? AND expires_at < ?", string(entity.StatusActive), now).
		Updates(map[string]interface{}{
			"status":     string(entity.StatusExpired),
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *postRepository) MarkCollected(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ? AND status = ?", id, string(entity.StatusActive)).
		Updates(map[string]interface{}{
			"status":       string(entity.StatusCollected),
			"collected_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) MarkRemoved(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(entity.StatusRemoved),
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementReportCount bumps the counter in place and returns the new value
// from the same statement, so concurrent reports each see their own count.
func (r *postRepository) IncrementReportCount(ctx context.Context, id string) (int, error) {
	var post model.PostModel
	result := r.db.WithContext(ctx).Model(&post).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "report_count"}}}).
		Where("id = ?", id).
		UpdateColumn("report_count", gorm.Expr("report_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, entity.ErrNotFound
	}
	return post.ReportCount, nil
}

func (r *postRepository) Count(ctx context.Context, status *entity.PostStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.PostModel{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *postRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Total
	}
	return counts, nil
}
