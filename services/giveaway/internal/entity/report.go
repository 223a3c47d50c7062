package entity

import "time"

type ReportReason string

const (
	ReasonItemGone          ReportReason = "item_gone"
	ReasonIncorrectLocation ReportReason = "incorrect_location"
	ReasonUnsafe            ReportReason = "unsafe"
	ReasonSpam              ReportReason = "spam"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonItemGone, ReasonIncorrectLocation, ReasonUnsafe, ReasonSpam:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
)

func (s ReportStatus) Valid() bool {
	return s == ReportPending || s == ReportReviewed
}

// Report flags a post. PostID is a reference only; the post may be gone.
type Report struct {
	ID         string       `json:"id"`
	PostID     string       `json:"post_id"`
	Reason     ReportReason `json:"reason"`
	CreatedAt  time.Time    `json:"created_at"`
	Status     ReportStatus `json:"status"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
}
