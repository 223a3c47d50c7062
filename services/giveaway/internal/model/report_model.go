package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportModel struct {
	ID         string     `gorm:"type:uuid;primary_key" json:"id"`
	PostID     string     `gorm:"type:uuid;not null;index" json:"post_id"`
	Reason     string     `gorm:"type:varchar(30);not null" json:"reason"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

func (ReportModel) TableName() string { return "reports" }

func (r *ReportModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
