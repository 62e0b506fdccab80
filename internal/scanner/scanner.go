// Package scanner discovers ROM files on disk, fingerprints their
// contents, and groups identical copies into duplicate groups.
package scanner

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/romstackapp/romstack/internal/errors"
)

// Scanner orchestrates the collection scanning process.
type Scanner struct {
	logger *slog.Logger
	walker *Walker
	hasher *Hasher
}

// New creates a scanner for collections holding the given ROM
// extensions, hashing contents with the named algorithm. Directories
// in skipDirs are excluded from the walk.
func New(logger *slog.Logger, extensions []string, algorithm string, skipDirs ...string) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		logger: logger,
		walker: NewWalker(logger, extensions, skipDirs...),
		hasher: NewHasher(logger, algorithm),
	}
}

// ScanOptions configures a scan.
type ScanOptions struct {
	OnProgress func(Progress)
	Workers    int
}

// Scan performs a full scan of the collection under root. It walks the
// filesystem, fingerprints every ROM file, and groups files with
// identical contents. Unreadable files are recorded and skipped.
func (s *Scanner) Scan(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, errors.Scanf("collection root not accessible: %v", err)
	}

	result := &ScanResult{
		Root:      root,
		Algorithm: s.hasher.Algorithm(),
		StartedAt: time.Now(),
	}

	tracker := NewProgressTracker(opts.OnProgress)

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	files := s.walkFilesystem(ctx, root, tracker, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hashed, err := s.hashFiles(ctx, files, tracker, result, opts)
	if err != nil {
		return nil, err
	}
	result.Files = hashed

	tracker.SetPhase(PhaseDeduping)
	result.Duplicates = FindDuplicates(hashed)

	result.CompletedAt = time.Now()
	tracker.SetPhase(PhaseComplete)
	s.logger.Info("scan complete",
		"duration", result.CompletedAt.Sub(result.StartedAt),
		"files", len(result.Files),
		"skipped", result.Skipped,
		"duplicate_groups", len(result.Duplicates),
		"errors", result.Errors,
	)

	return result, nil
}

// walkFilesystem walks the directory tree and collects ROM files.
func (s *Scanner) walkFilesystem(ctx context.Context, root string, tracker *ProgressTracker, result *ScanResult) []WalkResult {
	tracker.SetPhase(PhaseWalking)
	s.logger.Info("starting walk", "path", root)

	walkResults := s.walker.Walk(ctx, root)
	files := make([]WalkResult, 0, 100)

	for wr := range walkResults {
		if wr.Error != nil {
			tracker.AddError(ScanError{
				Path:  wr.Path,
				Phase: PhaseWalking,
				Error: wr.Error,
				Time:  time.Now(),
			})
			result.Errors++
			continue
		}
		if wr.Skipped {
			result.Skipped++
			continue
		}
		files = append(files, wr)
		tracker.Increment(wr.Path)
	}

	s.logger.Info("walk complete", "files", len(files), "skipped", result.Skipped)
	return files
}

// hashFiles fingerprints the walked files with the worker pool.
func (s *Scanner) hashFiles(ctx context.Context, files []WalkResult, tracker *ProgressTracker, result *ScanResult, opts ScanOptions) ([]File, error) {
	tracker.SetPhase(PhaseHashing)
	tracker.SetTotal(len(files))
	s.logger.Info("hashing files", "count", len(files), "algorithm", s.hasher.Algorithm(), "workers", opts.Workers)

	hashed, scanErrors, err := s.hasher.Hash(ctx, files, HashOptions{
		Workers: opts.Workers,
		OnFile:  tracker.Increment,
	})
	if err != nil {
		return nil, err
	}

	for _, se := range scanErrors {
		tracker.AddError(se)
		result.Errors++
	}

	s.logger.Info("hashing complete", "files", len(hashed), "errors", len(scanErrors))
	return hashed, nil
}
