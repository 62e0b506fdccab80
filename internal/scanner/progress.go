package scanner

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// notifyInterval throttles per-file progress updates. A scan touching
// tens of thousands of ROMs would otherwise flood the observer.
const notifyInterval = 100 * time.Millisecond

// ProgressTracker tracks scan progress and reports it through a
// callback. Phase changes, errors, and phase completion always reach
// the callback; per-file increments are rate limited.
type ProgressTracker struct {
	callback func(Progress)
	limiter  *rate.Limiter
	progress Progress
	mu       sync.RWMutex
}

// NewProgressTracker creates a new progress tracker. The callback runs
// on the goroutine that mutates the tracker and may be nil.
func NewProgressTracker(callback func(Progress)) *ProgressTracker {
	return &ProgressTracker{
		callback: callback,
		limiter:  rate.NewLimiter(rate.Every(notifyInterval), 1),
		progress: Progress{
			Phase: PhaseWalking,
		},
	}
}

// SetPhase updates the current phase and resets the counters.
func (p *ProgressTracker) SetPhase(phase ScanPhase) {
	p.mu.Lock()
	p.progress.Phase = phase
	p.progress.Current = 0
	p.progress.Total = 0
	snapshot := p.progress
	p.mu.Unlock()

	p.notify(snapshot, true)
}

// SetTotal sets the total items for the current phase.
func (p *ProgressTracker) SetTotal(total int) {
	p.mu.Lock()
	p.progress.Total = total
	snapshot := p.progress
	p.mu.Unlock()

	p.notify(snapshot, true)
}

// Increment advances the current progress by one item.
func (p *ProgressTracker) Increment(currentItem string) {
	p.mu.Lock()
	p.progress.Current++
	p.progress.CurrentItem = currentItem
	snapshot := p.progress
	finished := p.progress.Total > 0 && p.progress.Current >= p.progress.Total
	p.mu.Unlock()

	p.notify(snapshot, finished)
}

// AddError records an error.
func (p *ProgressTracker) AddError(err ScanError) {
	p.mu.Lock()
	p.progress.Errors = append(p.progress.Errors, err)
	snapshot := p.progress
	p.mu.Unlock()

	p.notify(snapshot, true)
}

// Get returns current progress.
func (p *ProgressTracker) Get() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.progress
}

// notify invokes the callback outside the lock. Unforced updates are
// dropped when they arrive faster than the limiter allows.
func (p *ProgressTracker) notify(snapshot Progress, force bool) {
	if p.callback == nil {
		return
	}
	if !force && !p.limiter.Allow() {
		return
	}
	p.callback(snapshot)
}
