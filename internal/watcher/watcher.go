// Package watcher watches a rom collection for filesystem changes.
//
// Change detection is settle-based: a file must stay unchanged for the
// configured delay before it is reported, so a rom still being copied in
// never reaches the scanner half-written. Settled events are grouped into
// batches that flush when the collection goes quiet, and watch mode runs
// one incremental rescan per batch.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/romstackapp/romstack/internal/errors"
)

// Watcher monitors a rom collection tree for changes.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile // paths still being written
	known   map[string]struct{}     // files seen by the walk or a settled event
	batch   Batch                   // settled events waiting for the tree to go quiet

	batches chan Batch
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
}

// pendingFile tracks a file that may still be changing
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a collection watcher.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create filesystem watcher")
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		fsw:     fsw,
		pending: make(map[string]*pendingFile),
		known:   make(map[string]struct{}),
		batches: make(chan Batch, 16),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds a directory tree to be monitored. Files already on disk are
// remembered so later changes to them report as modifications, but no
// events are emitted for them.
func (w *Watcher) Watch(root string) error {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrapf(err, errors.CodeScan, "watch %s", root)
	}
	if !info.IsDir() {
		return errors.Validationf("watch root %s is not a directory", root)
	}

	return w.watchDir(root)
}

// watchDir recursively watches a directory.
func (w *Watcher) watchDir(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("cannot access path", "path", p, "error", err)
			return nil
		}

		if w.opts.shouldIgnore(p) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() {
			// Remember files that predate the watch so their next
			// write reports as a modification.
			if w.opts.wantsFile(p) {
				w.mu.Lock()
				w.known[p] = struct{}{}
				w.mu.Unlock()
			}
			return nil
		}

		if err := w.fsw.Add(p); err != nil {
			w.logger.Error("cannot watch directory", "path", p, "error", err)
			return nil
		}

		w.logger.Debug("watching directory", "path", p)
		return nil
	})
}

// Start begins delivering change batches. It blocks until the context is
// cancelled; Stop still has to be called to release resources.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// processEvents drains the fsnotify channels.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.errors <- err
		}
	}
}

// handleEvent routes one fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if w.opts.shouldIgnore(path) {
		return
	}

	// New directories join the watch so nothing created inside them is missed
	if event.Op&fsnotify.Create != 0 {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if err := w.watchDir(path); err != nil {
				w.logger.Warn("cannot watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	// Rename covers files moved out of the tree; the destination side
	// arrives as a separate Create when it lands in a watched directory
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if !w.opts.wantsFile(path) {
			return
		}
		w.recordRemoved(path)
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		if !w.opts.wantsFile(path) {
			return
		}
		w.startSettling(path)
	}
}

// startSettling begins or restarts the settle clock for a file.
func (w *Watcher) startSettling(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		// Gone already; a Remove event follows on its own
		w.flushIfQuiet()
		return
	}
	if info.IsDir() {
		w.flushIfQuiet()
		return
	}

	pending := &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(path)
	})

	w.pending[path] = pending
}

// checkSettled decides whether a file has stopped changing.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, exists := w.pending[path]
	if !exists {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Deleted while settling
		delete(w.pending, path)
		delete(w.known, path)
		w.batch = append(w.batch, Event{Type: EventRemoved, Path: path})
		w.flushIfQuiet()
		return
	}

	// Still growing, restart the clock
	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(path)
		})
		return
	}

	delete(w.pending, path)

	eventType := EventAdded
	if _, seen := w.known[path]; seen {
		eventType = EventModified
	}
	w.known[path] = struct{}{}

	w.batch = append(w.batch, Event{
		Type:    eventType,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
	w.flushIfQuiet()
}

// recordRemoved cancels any settling for the path and records a removal
// if the file was ever seen.
func (w *Watcher) recordRemoved(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}

	if _, seen := w.known[path]; seen {
		delete(w.known, path)
		w.batch = append(w.batch, Event{Type: EventRemoved, Path: path})
	}

	w.flushIfQuiet()
}

// flushIfQuiet emits the accumulated batch once nothing is settling.
// Callers must hold mu.
func (w *Watcher) flushIfQuiet() {
	if len(w.pending) > 0 || len(w.batch) == 0 {
		return
	}

	batch := w.batch
	w.batch = nil

	select {
	case w.batches <- batch:
	case <-w.done:
	}
}

// Events returns the channel change batches are delivered on.
// The channel closes when the watcher stops.
func (w *Watcher) Events() <-chan Batch {
	return w.batches
}

// Errors returns the channel for receiving errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)

	// Cancel all settle timers
	w.mu.Lock()
	for _, pending := range w.pending {
		pending.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	err := w.fsw.Close()

	// Wait for goroutines
	w.wg.Wait()

	close(w.batches)
	close(w.errors)

	return err
}
