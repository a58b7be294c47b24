package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/hkb3711220/passport-ocr/internal/domain"
	"github.com/hkb3711220/passport-ocr/internal/ledger"
	"github.com/hkb3711220/passport-ocr/internal/progress"
)

// ItemProcessor is the per-item work the scheduler fans out.
type ItemProcessor interface {
	Process(ctx context.Context, item domain.WorkItem) domain.Record
}

// Scheduler runs all work items with bounded parallelism, skipping items the
// ledger already marks done and counting every completion exactly once.
type Scheduler struct {
	proc          ItemProcessor
	maxConcurrent int64
	log           zerolog.Logger

	// onProgress, when set, receives a snapshot after every completed item.
	onProgress func(progress.Snapshot)
}

// NewScheduler creates a scheduler with the given concurrency bound.
func NewScheduler(proc ItemProcessor, maxConcurrent int, log zerolog.Logger) *Scheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Scheduler{
		proc:          proc,
		maxConcurrent: int64(maxConcurrent),
		log:           log,
	}
}

// OnProgress registers a per-completion progress callback.
func (s *Scheduler) OnProgress(fn func(progress.Snapshot)) {
	s.onProgress = fn
}

// Run processes every supported input path and returns one record per
// logical item: carried-over results first, then new completions in the
// order they finish. Item order is not preserved across the batch; pages
// within a document are (see Processor).
func (s *Scheduler) Run(ctx context.Context, paths []string, prior ledger.Ledger) ([]domain.Record, progress.Summary) {
	type pending struct {
		item     domain.WorkItem
		wasRetry bool
	}

	var carried []domain.Record
	var working []pending
	seen := make(map[string]bool, len(paths))

	for _, path := range paths {
		item := domain.NewWorkItem(path)

		if item.Type == domain.FileTypeUnsupported {
			s.log.Info().Str("file", path).Msg("skipping unsupported file")
			continue
		}

		// Items sharing a key are the same logical item; process once.
		if seen[item.Key()] {
			s.log.Warn().Str("file", path).Msg("duplicate filename, already scheduled")
			continue
		}
		seen[item.Key()] = true

		if prior.Classify(item.Key()) == ledger.Done {
			s.log.Info().Str("file", path).Msg("already processed, using previous result")
			carried = append(carried, prior[item.Key()])
			continue
		}

		// Frozen before the item starts: an errored prior entry makes this
		// completion count as a retry regardless of its outcome.
		entry, exists := prior[item.Key()]
		working = append(working, pending{
			item:     item,
			wasRetry: exists && entry.IsError(),
		})
	}

	tracker := progress.NewTracker(len(working))

	if len(working) == 0 {
		s.log.Info().Int("carried_over", len(carried)).Msg("nothing new to process")
		return carried, tracker.Summary()
	}

	s.log.Info().
		Int("new", len(working)).
		Int("carried_over", len(carried)).
		Int64("max_concurrent", s.maxConcurrent).
		Msg("starting batch")

	sem := semaphore.NewWeighted(s.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := make([]domain.Record, 0, len(working))

	for _, p := range working {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var rec domain.Record
			if err := sem.Acquire(ctx, 1); err != nil {
				rec = domain.ErrorRecord(p.item.Path, err)
			} else {
				rec = s.processSafely(ctx, p.item)
				sem.Release(1)
			}

			tracker.Update(!rec.IsError(), p.wasRetry)

			mu.Lock()
			fresh = append(fresh, rec)
			mu.Unlock()

			if s.onProgress != nil {
				s.onProgress(tracker.Snapshot())
			}
		}()
	}

	wg.Wait()

	summary := tracker.Summary()
	s.log.Info().
		Int64("processed", summary.Processed).
		Int64("success", summary.Success).
		Int64("failed", summary.Failed).
		Int64("retried", summary.Retried).
		Dur("elapsed", summary.Elapsed).
		Str("avg_per_item", summary.AverageString()).
		Msg("batch complete")

	return append(carried, fresh...), summary
}

// processSafely guards the per-item boundary: a panic inside the processor
// becomes an error record for that item and never aborts sibling items.
func (s *Scheduler) processSafely(ctx context.Context, item domain.WorkItem) (rec domain.Record) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("file", item.Path).
				Interface("panic", r).
				Msg("unexpected fault while processing item")
			rec = domain.ErrorRecord(item.Path, fmt.Errorf("unexpected fault: %v", r))
		}
	}()

	return s.proc.Process(ctx, item)
}
