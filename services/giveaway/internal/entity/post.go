package entity

import (
	"strings"
	"time"
)

type PostStatus string

const (
	StatusActive    PostStatus = "active"
	StatusCollected PostStatus = "collected"
	StatusExpired   PostStatus = "expired"
	StatusRemoved   PostStatus = "removed"
)

var PostStatuses = []PostStatus{StatusActive, StatusCollected, StatusExpired, StatusRemoved}

const CategoryGeneral = "general"

var Categories = []string{
	"furniture", "electronics", "appliances", "sports", "toys", "books", "clothing",
	"garden", "kitchen", "tools", "e-waste", "scrap-metal", "cardboard", CategoryGeneral,
}

// NormalizeCategory lowercases the input and maps anything outside the
// known set to "general".
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryGeneral
}

// Post is a giveaway listing as seen by readers. The true coordinates are
// only populated on the write path and never serialized.
type Post struct {
	ID            string     `json:"id"`
	PrimaryImage  string     `json:"image_base64"`
	Images        []string   `json:"images"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	TrueLatitude  float64    `json:"-"`
	TrueLongitude float64    `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CollectedAt   *time.Time `json:"collected_at,omitempty"`
	Status        PostStatus `json:"status"`
	ReportCount   int        `json:"report_count"`
	// Distance from the search centre, set only on near listings.
	Distance string `json:"distance,omitempty"`
}

// CanTransitionTo encodes the lifecycle: active posts may be collected or
// expire, anything may be removed, and terminal states never return to active.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	switch next {
	case StatusRemoved:
		return true
	case StatusCollected, StatusExpired:
		return s == StatusActive
	default:
		return false
	}
}

func (s PostStatus) Valid() bool {
	for _, known := range PostStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OpenGraph is the share-preview metadata for a post.
type OpenGraph struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Category    string     `json:"category"`
	Status      PostStatus `json:"status"`
	URL         string     `json:"url"`
}
