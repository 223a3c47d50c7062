package persistent

import (
	"sort"

	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/model"
)

// ToPostEntity builds the reader-facing post. True coordinates are not
// copied: read paths never select them.
func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:          m.ID,
		Title:       m.Title,
		Category:    m.Category,
		Description: m.Description,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		CreatedAt:   m.CreatedAt.UTC(),
		ExpiresAt:   m.ExpiresAt.UTC(),
		Status:      entity.PostStatus(m.Status),
		ReportCount: m.ReportCount,
		Images:      []string{},
	}
	if m.CollectedAt != nil {
		at := m.CollectedAt.UTC()
		post.CollectedAt = &at
	}

	if len(m.Images) > 0 {
		images := make([]model.PostImageModel, len(m.Images))
		copy(images, m.Images)
		sort.SliceStable(images, func(i, j int) bool { return images[i].Position < images[j].Position })

		post.Images = make([]string, len(images))
		for i, img := range images {
			post.Images[i] = img.Data
		}
		post.PrimaryImage = post.Images[0]
	}

	return post
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	post := &model.PostModel{
		ID:            e.ID,
		Title:         e.Title,
		Category:      e.Category,
		Description:   e.Description,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		TrueLatitude:  e.TrueLatitude,
		TrueLongitude: e.TrueLongitude,
		Status:        string(e.Status),
		ReportCount:   e.ReportCount,
		CreatedAt:     e.CreatedAt,
		ExpiresAt:     e.ExpiresAt,
		CollectedAt:   e.CollectedAt,
		UpdatedAt:     e.CreatedAt,
	}

	if len(e.Images) > 0 {
		post.Images = make([]model.PostImageModel, len(e.Images))
		for i, data := range e.Images {
			post.Images[i] = model.PostImageModel{
				PostID:   e.ID,
				Position: i,
				Data:     data,
			}
		}
	}

	return post
}

func ToReportEntity(m *model.ReportModel) *entity.Report {
	if m == nil {
		return nil
	}

	report := &entity.Report{
		ID:        m.ID,
		PostID:    m.PostID,
		Reason:    entity.ReportReason(m.Reason),
		Status:    entity.ReportStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.ReviewedAt != nil {
		at := m.ReviewedAt.UTC()
		report.ReviewedAt = &at
	}
	return report
}

func ToReportModel(e *entity.Report) *model.ReportModel {
	if e == nil {
		return nil
	}

	return &model.ReportModel{
		ID:         e.ID,
		PostID:     e.PostID,
		Reason:     string(e.Reason),
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		ReviewedAt: e.ReviewedAt,
	}
}

// ToDailyStats folds counter rows into per-date records, oldest first.
func ToDailyStats(rows []model.DailyStatCounterModel) []entity.DailyStats {
	byDate := make(map[string]*entity.DailyStats)
	var dates []string

	for _, row := range rows {
		day, ok := byDate[row.Date]
		if !ok {
			day = &entity.DailyStats{
				Date:       row.Date,
				Events:     map[string]int64{},
				Categories: map[string]int64{},
			}
			byDate[row.Date] = day
			dates = append(dates, row.Date)
		}
		switch row.Dimension {
		case model.DimensionEvent:
			day.Events[row.Name] += row.Total
		case model.DimensionCategory:
			day.Categories[row.Name] += row.Total
		}
	}

	sort.Strings(dates)
	out := make([]entity.DailyStats, len(dates))
	for i, d := range dates {
		out[i] = *byDate[d]
	}
	return out
}
