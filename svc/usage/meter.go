package usage

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrMissingUserID = errors.New("usage: missing user id")
	ErrStore         = errors.New("usage: counter store failure")
	ErrLimitReached  = errors.New("usage: period limit reached")
)

// Meter reads and increments per-period counters.
type Meter interface {
	Current(ctx context.Context, userID string, periodStart time.Time) (int, error)
	Increment(ctx context.Context, userID string, periodStart time.Time) (int, error)
	// Reserve increments the counter only while it is below limit, as one
	// atomic step. It returns ErrLimitReached otherwise.
	Reserve(ctx context.Context, userID string, periodStart time.Time, limit int) (int, error)
	// Release gives back one unit taken by Reserve. The counter never drops
	// below zero.
	Release(ctx context.Context, userID string, periodStart time.Time) error
}

// MonthStart returns the first instant of t's calendar month in UTC. It is
// the period used for users without a subscription period.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// WindowStart returns the start of the monthly window anchored at anchor
// that contains now. Windows begin on the anchor's day of month, clamped to
// the month's last day, so a yearly period is metered month by month.
// Instants before anchor belong to the first window.
func WindowStart(anchor, now time.Time) time.Time {
	anchor, now = anchor.UTC(), now.UTC()
	if !now.After(anchor) {
		return anchor
	}
	months := (now.Year()-anchor.Year())*12 + int(now.Month()-anchor.Month())
	start := addMonths(anchor, months)
	if start.After(now) {
		start = addMonths(anchor, months-1)
	}
	return start
}

func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}

type counterKey struct {
	userID string
	period int64
}

// MemoryMeter is an in-process Meter.
type MemoryMeter struct {
	mu       sync.Mutex
	counters map[counterKey]int
}

// NewMemoryMeter creates an empty meter.
func NewMemoryMeter() *MemoryMeter {
	return &MemoryMeter{counters: make(map[counterKey]int)}
}

func (m *MemoryMeter) Current(_ context.Context, userID string, periodStart time.Time) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[counterKey{userID, periodStart.UTC().Unix()}], nil
}

func (m *MemoryMeter) Increment(_ context.Context, userID string, periodStart time.Time) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := counterKey{userID, periodStart.UTC().Unix()}
	m.counters[k]++
	return m.counters[k], nil
}

func (m *MemoryMeter) Reserve(_ context.Context, userID string, periodStart time.Time, limit int) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := counterKey{userID, periodStart.UTC().Unix()}
	if m.counters[k] >= limit {
		return m.counters[k], ErrLimitReached
	}
	m.counters[k]++
	return m.counters[k], nil
}

func (m *MemoryMeter) Release(_ context.Context, userID string, periodStart time.Time) error {
	if userID == "" {
		return ErrMissingUserID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := counterKey{userID, periodStart.UTC().Unix()}
	if m.counters[k] > 0 {
		m.counters[k]--
	}
	return nil
}
