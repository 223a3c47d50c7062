package entity

import "time"

const (
	EventPostCreated   = "post_created"
	EventPostCollected = "post_collected"
	EventPostRemoved   = "post_removed"
	EventReportFiled   = "report_filed"
)

// DailyStats is one UTC day of event and category counters.
type DailyStats struct {
	Date       string           `json:"date"`
	Events     map[string]int64 `json:"events"`
	Categories map[string]int64 `json:"categories"`
}

type Snapshot struct {
	TotalPosts     int64            `json:"total_posts"`
	ActivePosts    int64            `json:"active_posts"`
	CollectedPosts int64            `json:"collected_posts"`
	ExpiredPosts   int64            `json:"expired_posts"`
	RemovedPosts   int64            `json:"removed_posts"`
	PendingReports int64            `json:"pending_reports"`
	Categories     map[string]int64 `json:"categories"`
}

// Event is published after a lifecycle change has been persisted.
type Event struct {
	Type        string    `json:"type"`
	PostID      string    `json:"post_id"`
	Category    string    `json:"category,omitempty"`
	ReportCount int       `json:"report_count,omitempty"`
	At          time.Time `json:"at"`
}
