package organize

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/scanner"
	"github.com/romstackapp/romstack/internal/util"
)

// asciiUnsafe matches characters flash-cart FAT firmware cannot take.
var asciiUnsafe = regexp.MustCompile(`[^a-zA-Z0-9 _\-.]`)

// cleanASCIIName reduces a filename to the character set EverDrive-style
// menus display reliably.
func cleanASCIIName(name string) string {
	return strings.TrimSpace(asciiUnsafe.ReplaceAllString(name, ""))
}

// AlphabeticalOrganizer copies scanned ROMs into one folder per leading
// letter, the layout flash-cart menus browse fastest.
type AlphabeticalOrganizer struct {
	logger *slog.Logger
}

// NewAlphabeticalOrganizer creates an alphabetical organizer.
func NewAlphabeticalOrganizer(logger *slog.Logger) *AlphabeticalOrganizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlphabeticalOrganizer{logger: logger}
}

// AlphaOptions configures an alphabetical copy pass.
type AlphaOptions struct {
	// OnProgress, if set, is invoked every copyProgressInterval files
	// and once at the end.
	OnProgress func(done, total int)

	// OutputDir is the folder letter subfolders are created in.
	OutputDir string

	// MaxFilesPerFolder spills a full letter into numbered overflow
	// folders (A, A2, A3, ...) once it holds this many files from the
	// current pass. Zero disables the cap.
	MaxFilesPerFolder int

	// TrimLength caps destination filenames, preserving the extension.
	// Zero disables trimming.
	TrimLength int
}

// AlphaStats summarizes an alphabetical copy pass. Folders counts only
// files placed by the current pass.
type AlphaStats struct {
	Folders map[string]int
	Copied  int
	Skipped int
}

// CopyByLetter copies every scanned file into a folder named after the
// first letter of its cleaned name under opts.OutputDir. Names that
// start with a digit or symbol share the "_" folder. Files without a
// digest (unreadable during the scan) and destinations that already
// exist are skipped. Per-file failures are logged and do not stop the
// pass.
func (o *AlphabeticalOrganizer) CopyByLetter(ctx context.Context, files []scanner.File, opts AlphaOptions) (*AlphaStats, error) {
	if opts.OutputDir == "" {
		return nil, errors.Validation("output directory is required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return nil, errors.Wrap(err, errors.CodeCopy, "create output directory")
	}

	stats := &AlphaStats{Folders: make(map[string]int)}
	total := len(files)

	for i, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if opts.OnProgress != nil && i%copyProgressInterval == 0 {
			opts.OnProgress(i, total)
		}

		if f.Digest == "" {
			stats.Skipped++
			continue
		}

		name := cleanASCIIName(f.Name)
		if opts.TrimLength > 0 {
			name = util.TrimName(name, opts.TrimLength)
		}
		if name == "" {
			stats.Skipped++
			continue
		}

		folder := o.pickFolder(letterFolder(name), opts.MaxFilesPerFolder, stats.Folders)
		dir := filepath.Join(opts.OutputDir, folder)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			o.logger.Error("failed to create letter folder", "dir", dir, "error", err)
			continue
		}

		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			stats.Skipped++
			continue
		}
		if err := copyFile(f.Path, dst); err != nil {
			o.logger.Error("failed to copy rom", "src", f.Path, "dest", dst, "error", err)
			continue
		}
		stats.Folders[folder]++
		stats.Copied++
	}

	if opts.OnProgress != nil {
		opts.OnProgress(total, total)
	}

	o.logger.Info("alphabetical copy complete",
		"total", total,
		"copied", stats.Copied,
		"skipped", stats.Skipped,
		"folders", len(stats.Folders),
	)
	return stats, nil
}

// pickFolder returns the first folder in the overflow chain (A, A2,
// A3, ...) still under the per-folder cap.
func (o *AlphabeticalOrganizer) pickFolder(letter string, maxFiles int, counts map[string]int) string {
	folder := letter
	for n := 2; maxFiles > 0 && counts[folder] >= maxFiles; n++ {
		folder = letter + strconv.Itoa(n)
	}
	return folder
}

// letterFolder returns the folder a cleaned name sorts into.
func letterFolder(name string) string {
	c := name[0]
	switch {
	case c >= 'a' && c <= 'z':
		return strings.ToUpper(string(c))
	case c >= 'A' && c <= 'Z':
		return string(c)
	default:
		return "_"
	}
}
