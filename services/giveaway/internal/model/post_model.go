package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostModel struct {
	ID            string           `gorm:"type:uuid;primary_key" json:"id"`
	Title         string           `gorm:"type:varchar(255);not null" json:"title"`
	Category      string           `gorm:"type:varchar(50);not null;index" json:"category"`
	Description   string           `gorm:"type:text" json:"description"`
	Latitude      float64          `gorm:"not null" json:"latitude"`
	Longitude     float64          `gorm:"not null" json:"longitude"`
	TrueLatitude  float64          `gorm:"not null" json:"-"`
	TrueLongitude float64          `gorm:"not null" json:"-"`
	Status        string           `gorm:"type:varchar(20);not null;default:'active';index:idx_posts_status_expires,priority:1" json:"status"`
	ReportCount   int              `gorm:"not null;default:0" json:"report_count"`
	CreatedAt     time.Time        `gorm:"not null" json:"created_at"`
	ExpiresAt     time.Time        `gorm:"not null;index:idx_posts_status_expires,priority:2" json:"expires_at"`
	CollectedAt   *time.Time       `json:"collected_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Images        []PostImageModel `gorm:"foreignKey:PostID" json:"images,omitempty"`
}

func (PostModel) TableName() string { return "posts" }

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PostImageModel stores one image payload; position 0 is the primary image.
type PostImageModel struct {
	ID       string `gorm:"type:uuid;primary_key" json:"id"`
	PostID   string `gorm:"type:uuid;not null;uniqueIndex:idx_post_images_post_position,priority:1" json:"post_id"`
	Position int    `gorm:"not null;uniqueIndex:idx_post_images_post_position,priority:2" json:"position"`
	Data     string `gorm:"type:text;not null" json:"data"`
}

func (PostImageModel) TableName() string { return "post_images" }

func (pi *PostImageModel) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == "" {
		pi.ID = uuid.New().String()
	}
	return nil
}
