// Package clock supplies the current time and fresh identifiers. Everything
// that stamps or names a record goes through these interfaces so tests can
// pin both.
package clock

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

// System returns wall-clock time in UTC.
func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

type uuidGenerator struct{}

// UUID generates random (version 4) UUID strings.
func UUID() IDGenerator { return uuidGenerator{} }

func (uuidGenerator) NewID() string { return uuid.New().String() }

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}

// DateKey is the UTC calendar date used to bucket daily statistics.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
