package match

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/util"
)

// Result is the outcome of matching one ROM file. Unmatched files
// carry genre "Unknown" and an empty catalog name.
type Result struct {
	Path        string
	Matched     bool
	Genre       string
	FullGenre   string
	CatalogName string
}

// Progress is a snapshot of a matching run, delivered after each
// batch completes.
type Progress struct {
	BatchesDone int
	BatchCount  int
	Processed   int
	Total       int
	Rate        float64 // files per second
	ETA         time.Duration
}

// Options configures a matching run.
type Options struct {
	// Workers is the number of concurrent matching tasks. Zero or
	// negative selects DefaultWorkers. Always clamped to 1-16.
	Workers int

	// Debug traces the first batch to TraceTo. Nothing is traced
	// when TraceTo is nil.
	Debug   bool
	TraceTo io.Writer

	// OnProgress, if set, is invoked on the calling goroutine after
	// each batch completes.
	OnProgress func(Progress)
}

// Scheduler fans matching work out over contiguous batches of the
// input. Batches share only the read-only index; every batch returns
// its results by value and the scheduler merges them as batches
// finish, so no locking is needed anywhere in the matching phase.
type Scheduler struct {
	index  *catalog.Index
	logger *slog.Logger
}

// NewScheduler creates a scheduler over index.
func NewScheduler(index *catalog.Index, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{index: index, logger: logger}
}

// MatchAll matches every path and returns the merged results. Result
// order follows batch completion order, not input order. File copies
// and any other filesystem work belong to the caller's sequential
// phase; MatchAll only reads names.
func (s *Scheduler) MatchAll(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if len(paths) == 0 {
		return []Result{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	workers = ClampWorkers(workers)

	batches := partition(paths, workers)
	s.logger.Info("matching phase starting",
		"files", len(paths),
		"workers", workers,
		"batches", len(batches),
	)

	type job struct {
		batch []string
		index int
	}
	type batchResult struct {
		results []Result
		index   int
		err     error
	}

	jobs := make(chan job, len(batches))
	results := make(chan batchResult, len(batches))

	var tracer *Tracer
	if opts.Debug && opts.TraceTo != nil {
		tracer = NewTracer(opts.TraceTo)
	}

	for range workers {
		go func() {
			for j := range jobs {
				select {
				case <-ctx.Done():
					results <- batchResult{index: j.index, err: ctx.Err()}
					return
				default:
				}

				// Only the first batch is ever traced.
				m := NewMatcher(s.index, nil)
				if j.index == 0 {
					m = NewMatcher(s.index, tracer)
				}
				results <- batchResult{results: matchBatch(m, j.batch), index: j.index}
			}
		}()
	}

	for i, batch := range batches {
		select {
		case jobs <- job{batch: batch, index: i}:
		case <-ctx.Done():
			close(jobs)
			return nil, ctx.Err()
		}
	}
	close(jobs)

	all := make([]Result, 0, len(paths))
	start := time.Now()
	processed := 0

	for done := 1; done <= len(batches); done++ {
		select {
		case r := <-results:
			if r.err != nil {
				return nil, r.err
			}
			all = append(all, r.results...)
			processed += len(r.results)

			elapsed := time.Since(start).Seconds()
			var rate float64
			if elapsed > 0 {
				rate = float64(processed) / elapsed
			}
			var eta time.Duration
			if rate > 0 {
				eta = time.Duration(float64(len(paths)-processed) / rate * float64(time.Second))
			}

			s.logger.Debug("batch complete",
				"batch", r.index+1,
				"batches", len(batches),
				"processed", processed,
				"total", len(paths),
			)

			if opts.OnProgress != nil {
				opts.OnProgress(Progress{
					BatchesDone: done,
					BatchCount:  len(batches),
					Processed:   processed,
					Total:       len(paths),
					Rate:        rate,
					ETA:         eta,
				})
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return all, nil
}

// matchBatch runs the cascade over one batch sequentially.
func matchBatch(m *Matcher, batch []string) []Result {
	results := make([]Result, 0, len(batch))
	for _, path := range batch {
		entry, _ := m.Match(util.Stem(path))
		if entry != nil {
			results = append(results, Result{
				Path:        path,
				Matched:     true,
				Genre:       entry.Genre,
				FullGenre:   entry.FullGenre,
				CatalogName: entry.OriginalName,
			})
			continue
		}
		results = append(results, Result{
			Path:      path,
			Genre:     "Unknown",
			FullGenre: "Unknown",
		})
	}
	return results
}

// partition splits paths into at most workers contiguous batches of
// near-equal size; the final batch absorbs the remainder.
func partition(paths []string, workers int) [][]string {
	batchSize := max(1, len(paths)/workers)
	var batches [][]string
	for start := 0; start < len(paths); start += batchSize {
		end := start + batchSize
		if len(batches) == workers-1 || end > len(paths) {
			end = len(paths)
		}
		batches = append(batches, paths[start:end])
		if end == len(paths) {
			break
		}
	}
	return batches
}

// DefaultWorkers picks the matching concurrency when none is
// configured: eight at most, bounded by available CPUs.
func DefaultWorkers() int {
	return max(1, min(8, runtime.NumCPU()))
}

// ClampWorkers bounds a requested worker count to the supported range.
func ClampWorkers(n int) int {
	return min(16, max(1, n))
}
