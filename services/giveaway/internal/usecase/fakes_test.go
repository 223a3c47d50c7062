package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"ucycle/services/giveaway/internal/entity"
	"ucycle/services/giveaway/internal/repo/persistent"
)

// memoryStore backs the repository interfaces with maps. Every method takes
// the one lock, so each call is atomic the way a conditional UPDATE is.
type memoryStore struct {
	mu       sync.Mutex
	posts    map[string]*entity.Post
	reports  map[string]*entity.Report
	counters map[string]map[string]int64 // date -> "dimension/name" -> total

	failIncrement error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		posts:    map[string]*entity.Post{},
		reports:  map[string]*entity.Report{},
		counters: map[string]map[string]int64{},
	}
}

func publicCopy(p *entity.Post) *entity.Post {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.TrueLatitude, c.TrueLongitude = 0, 0
	return &c
}

func (s *memoryStore) stored(id string) *entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

type memPosts struct{ s *memoryStore }

func (r memPosts) Create(_ context.Context, post *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *post
	c.Images = append([]string(nil), post.Images...)
	r.s.posts[post.ID] = &c
	return nil
}

func (r memPosts) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return publicCopy(p), nil
}

func (r memPosts) List(_ context.Context, filter persistent.PostFilter) ([]*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Post
	for _, p := range r.s.posts {
		if len(filter.Statuses) > 0 {
			match := false
			for _, st := range filter.Statuses {
				match = match || p.Status == st
			}
			if !match {
				continue
			}
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, publicCopy(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memPosts) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.posts {
		if p.Status == entity.StatusActive && p.ExpiresAt.Before(now) {
			p.Status = entity.StatusExpired
			n++
		}
	}
	return n, nil
}

func (r memPosts) MarkCollected(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.Status != entity.StatusActive {
		return false, nil
	}
	p.Status = entity.StatusCollected
	p.CollectedAt = &at
	return true, nil
}

func (r memPosts) MarkRemoved(_ context.Context, id string, _ time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return false, nil
	}
	p.Status = entity.StatusRemoved
	return true, nil
}

func (r memPosts) IncrementReportCount(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failIncrement != nil {
		return 0, r.s.failIncrement
	}
	p, ok := r.s.posts[id]
	if !ok {
		return 0, entity.ErrNotFound
	}
	p.ReportCount++
	return p.ReportCount, nil
}

func (r memPosts) Count(_ context.Context, status *entity.PostStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.posts {
		if status == nil || p.Status == *status {
			n++
		}
	}
	return n, nil
}

func (r memPosts) CountByCategory(context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int64{}
	for _, p := range r.s.posts {
		out[p.Category]++
	}
	return out, nil
}

type memReports struct{ s *memoryStore }

func (r memReports) Create(_ context.Context, report *entity.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *report
	r.s.reports[report.ID] = &c
	return nil
}

func (r memReports) List(_ context.Context, status *entity.ReportStatus) ([]*entity.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Report
	for _, rep := range r.s.reports {
		if status == nil || rep.Status == *status {
			c := *rep
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memReports) MarkReviewed(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return entity.ErrNotFound
	}
	rep.Status = entity.ReportReviewed
	if rep.ReviewedAt == nil {
		rep.ReviewedAt = &at
	}
	return nil
}

func (r memReports) CountByStatus(_ context.Context, status entity.ReportStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if rep.Status == status {
			n++
		}
	}
	return n, nil
}

type memStats struct{ s *memoryStore }

func (r memStats) Increment(_ context.Context, date, event, category string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day, ok := r.s.counters[date]
	if !ok {
		day = map[string]int64{}
		r.s.counters[date] = day
	}
	day["event/"+event]++
	if category != "" {
		day["category/"+category]++
	}
	return nil
}

func (r memStats) ListDaily(_ context.Context, fromDate string) ([]entity.DailyStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.DailyStats
	for date, counters := range r.s.counters {
		if date < fromDate {
			continue
		}
		day := entity.DailyStats{Date: date, Events: map[string]int64{}, Categories: map[string]int64{}}
		for key, total := range counters {
			if name, ok := strings.CutPrefix(key, "event/"); ok {
				day.Events[name] = total
			} else if name, ok := strings.CutPrefix(key, "category/"); ok {
				day.Categories[name] = total
			}
		}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *memoryStore) counter(date, key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[date][key]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingMirror struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
}

func newRecordingMirror() *recordingMirror {
	return &recordingMirror{uploaded: map[string]string{}}
}

func (m *recordingMirror) Upload(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded[key] = contentType
	return m.URL(key), nil
}

func (m *recordingMirror) URL(key string) string {
	return "https://cdn.example.test/" + key
}

func (m *recordingMirror) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}

var errBoom = errors.New("boom")
