package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/romstackapp/romstack/internal/errors"
)

// Walker traverses the collection root and discovers ROM files.
type Walker struct {
	logger     *slog.Logger
	extensions map[string]bool
	skipDirs   map[string]bool
}

// NewWalker creates a walker that reports files whose lowercased
// extension is in exts. An empty extension list matches every file.
// Directories listed in skipDirs are not entered, which keeps a
// previous run's output folder out of the scan.
func NewWalker(logger *slog.Logger, exts []string, skipDirs ...string) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}
	dirSet := make(map[string]bool, len(skipDirs))
	for _, d := range skipDirs {
		if d != "" {
			dirSet[filepath.Clean(d)] = true
		}
	}
	return &Walker{
		logger:     logger,
		extensions: extSet,
		skipDirs:   dirSet,
	}
}

// WalkResult represents a file discovered during walking.
type WalkResult struct {
	ModTime time.Time
	Error   error
	Path    string
	RelPath string
	Size    int64
	Skipped bool // extension not in the ROM set
}

// Walk traverses a directory and streams discovered files.
// Returns a channel that will receive results.
// Channel closes when walk is complete or context is canceled.
func (w *Walker) Walk(ctx context.Context, rootPath string) <-chan WalkResult {
	results := make(chan WalkResult, 100) // Buffered channel for better performance

	go func() {
		defer close(results)

		err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
			// Check context cancellation.
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// Surface walk errors as results and keep walking.
			if err != nil {
				return w.send(ctx, results, WalkResult{Path: path, Error: err})
			}

			// Skip hidden files/directories.
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if w.skipDirs[filepath.Clean(path)] {
					return filepath.SkipDir
				}
				return nil
			}

			// Files outside the ROM extension set are reported as
			// skip markers so the caller can count them.
			if !w.matches(path) {
				return w.send(ctx, results, WalkResult{Path: path, Skipped: true})
			}

			info, err := d.Info()
			if err != nil {
				return w.send(ctx, results, WalkResult{Path: path, Error: err})
			}

			relPath, err := filepath.Rel(rootPath, path)
			if err != nil {
				w.logger.Error("failed to compute relative path", "path", path, "error", err)
				relPath = path
			}

			return w.send(ctx, results, WalkResult{
				Path:    path,
				RelPath: relPath,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("walk failed", "root", rootPath, "error", err)
		}
	}()

	return results
}

// send delivers a result unless the context is canceled first.
func (w *Walker) send(ctx context.Context, results chan<- WalkResult, r WalkResult) error {
	select {
	case results <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// matches reports whether the file's extension is in the ROM set.
func (w *Walker) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}
