// Package alerts watches report events and flags posts that moderators
// should look at first.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	// AlertsKey is the redis list holding the newest alerts first.
	AlertsKey = "moderation:alerts"
	maxAlerts = 500
	alertsTTL = 7 * 24 * time.Hour
)

// Alert is stored for every report event at or above the threshold.
type Alert struct {
	PostID      string    `json:"post_id"`
	Category    string    `json:"category,omitempty"`
	ReportCount int       `json:"report_count"`
	At          time.Time `json:"at"`
}

type Watcher struct {
	threshold   int
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewWatcher returns a watcher that alerts once a post has threshold reports.
// redisClient may be nil, in which case alerts are only logged.
func NewWatcher(threshold int, redisClient *redis.Client, logger *logger.Logger) *Watcher {
	if threshold < 1 {
		threshold = 1
	}
	return &Watcher{threshold: threshold, redisClient: redisClient, logger: logger}
}

// Handle processes one queue delivery. Returning an error requeues it.
func (w *Watcher) Handle(routingKey string, body []byte) error {
	if routingKey != entity.EventReportFiled {
		return nil
	}

	var event entity.Event
	if err := json.Unmarshal(body, &event); err != nil {
		w.logger.Warn("[ALERTS] Skipping undecodable event: %v", err)
		return nil
	}
	if event.PostID == "" || event.ReportCount < w.threshold {
		return nil
	}

	alert := Alert{
		PostID:      event.PostID,
		Category:    event.Category,
		ReportCount: event.ReportCount,
		At:          event.At,
	}
	w.logger.Warn("[ALERTS] Post %s has %d reports (threshold %d)", alert.PostID, alert.ReportCount, w.threshold)

	if w.redisClient == nil {
		return nil
	}
	return w.store(context.Background(), alert)
}

func (w *Watcher) store(ctx context.Context, alert Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	pipe := w.redisClient.TxPipeline()
	pipe.LPush(ctx, AlertsKey, data)
	pipe.LTrim(ctx, AlertsKey, 0, maxAlerts-1)
	pipe.Expire(ctx, AlertsKey, alertsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}
	return nil
}

// Recent returns up to limit stored alerts, newest first.
func (w *Watcher) Recent(ctx context.Context, limit int64) ([]Alert, error) {
	if w.redisClient == nil || limit <= 0 {
		return []Alert{}, nil
	}

	raw, err := w.redisClient.LRange(ctx, AlertsKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Alert, 0, len(raw))
	for _, item := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
