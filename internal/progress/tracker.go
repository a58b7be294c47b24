// Package progress accounts for completed work items during a batch run.
package progress

import (
	"sync/atomic"
	"time"
)

// Tracker counts terminal item outcomes. All counters are atomic: updates
// arrive from concurrently completing items and must never lose increments.
// Counters only advance; nothing is rolled back.
type Tracker struct {
	total     int64
	processed atomic.Int64
	success   atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
	startedAt time.Time
}

// NewTracker starts tracking a run of total items.
func NewTracker(total int) *Tracker {
	return &Tracker{
		total:     int64(total),
		startedAt: time.Now(),
	}
}

// Update records exactly one completed item. wasRetry marks items that a
// prior run had already failed.
func (t *Tracker) Update(success, wasRetry bool) {
	t.processed.Add(1)
	if success {
		t.success.Add(1)
	} else {
		t.failed.Add(1)
	}
	if wasRetry {
		t.retried.Add(1)
	}
}

// Snapshot is a point-in-time view of the run.
type Snapshot struct {
	Total           int64
	Processed       int64
	Success         int64
	Failed          int64
	Retried         int64
	PercentComplete float64
	Elapsed         time.Duration
	ETA             time.Duration
}

// Snapshot returns the current counters with derived percent and ETA. Before
// the first completion both percent and ETA are zero.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Total:     t.total,
		Processed: t.processed.Load(),
		Success:   t.success.Load(),
		Failed:    t.failed.Load(),
		Retried:   t.retried.Load(),
		Elapsed:   time.Since(t.startedAt),
	}

	if t.total > 0 {
		s.PercentComplete = float64(s.Processed) / float64(t.total) * 100
	}
	if s.Processed > 0 {
		perItem := s.Elapsed / time.Duration(s.Processed)
		s.ETA = perItem * time.Duration(t.total-s.Processed)
	}

	return s
}

// Summary is the final accounting of a finished run.
type Summary struct {
	Total          int64
	Processed      int64
	Success        int64
	Failed         int64
	Retried        int64
	Elapsed        time.Duration
	AveragePerItem time.Duration // zero when nothing was processed
}

// Summary returns the final totals.
func (t *Tracker) Summary() Summary {
	s := t.Snapshot()
	out := Summary{
		Total:     s.Total,
		Processed: s.Processed,
		Success:   s.Success,
		Failed:    s.Failed,
		Retried:   s.Retried,
		Elapsed:   s.Elapsed,
	}
	if s.Processed > 0 {
		out.AveragePerItem = s.Elapsed / time.Duration(s.Processed)
	}
	return out
}

// AverageString renders the average time per item, or "n/a" for an empty run.
func (s Summary) AverageString() string {
	if s.Processed == 0 {
		return "n/a"
	}
	return s.AveragePerItem.Round(time.Millisecond).String()
}
