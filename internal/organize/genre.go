package organize

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/match"
	"github.com/romstackapp/romstack/internal/util"
)

// GenreOrganizer copies matched ROMs into one folder per genre.
type GenreOrganizer struct {
	logger *slog.Logger
}

// NewGenreOrganizer creates a genre organizer.
func NewGenreOrganizer(logger *slog.Logger) *GenreOrganizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenreOrganizer{logger: logger}
}

// GenreOptions configures a genre copy pass.
type GenreOptions struct {
	// OnProgress, if set, is invoked every copyProgressInterval files
	// and once at the end.
	OnProgress func(done, total int)

	// OutputDir is the folder genre subfolders are created in.
	OutputDir string

	// TrimLength caps destination filenames, preserving the extension.
	// Zero disables trimming.
	TrimLength int

	// Sanitize strips filesystem-unsafe characters from destination
	// filenames.
	Sanitize bool
}

// Stats summarizes a genre copy pass. Genres counts every processed
// ROM by destination folder, matched or not.
type Stats struct {
	Genres    map[string]int
	Matched   int
	Unmatched int
}

// MatchedDetail records one matched ROM for the results report.
type MatchedDetail struct {
	RomName     string
	CatalogName string
	FullGenre   string
}

// Outcome carries everything the reports need from a genre copy pass.
type Outcome struct {
	Stats     Stats
	Matched   []MatchedDetail
	Unmatched []string
}

// CopyByGenre copies every result into a folder named after its genre
// under opts.OutputDir. Destinations that already exist are left
// untouched, so rerunning over the same collection is cheap. Per-file
// failures are logged and do not stop the pass.
func (g *GenreOrganizer) CopyByGenre(ctx context.Context, results []match.Result, opts GenreOptions) (*Outcome, error) {
	if opts.OutputDir == "" {
		return nil, errors.Validation("output directory is required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return nil, errors.Wrap(err, errors.CodeCopy, "create output directory")
	}

	outcome := &Outcome{Stats: Stats{Genres: make(map[string]int)}}
	total := len(results)

	for i, r := range results {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if opts.OnProgress != nil && i%copyProgressInterval == 0 {
			opts.OnProgress(i, total)
		}

		name := filepath.Base(r.Path)
		genreFolder := util.SanitizeName(r.Genre)
		if genreFolder == "" {
			genreFolder = UnknownGenre
		}

		if r.Matched {
			outcome.Stats.Matched++
			outcome.Matched = append(outcome.Matched, MatchedDetail{
				RomName:     name,
				CatalogName: r.CatalogName,
				FullGenre:   r.FullGenre,
			})
		} else {
			outcome.Stats.Unmatched++
			outcome.Unmatched = append(outcome.Unmatched, name)
		}
		outcome.Stats.Genres[genreFolder]++

		dir := filepath.Join(opts.OutputDir, genreFolder)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			g.logger.Error("failed to create genre folder", "dir", dir, "error", err)
			continue
		}

		dst := filepath.Join(dir, destinationName(name, opts.Sanitize, opts.TrimLength))
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := copyFile(r.Path, dst); err != nil {
			g.logger.Error("failed to copy rom", "src", r.Path, "dest", dst, "error", err)
		}
	}

	if opts.OnProgress != nil {
		opts.OnProgress(total, total)
	}

	g.logger.Info("genre copy complete",
		"total", total,
		"matched", outcome.Stats.Matched,
		"unmatched", outcome.Stats.Unmatched,
		"genres", len(outcome.Stats.Genres),
	)
	return outcome, nil
}

// destinationName applies the configured filename cleanup to one
// destination name. Sanitizing never empties a name; the original is
// kept when nothing survives.
func destinationName(name string, sanitize bool, trim int) string {
	out := name
	if sanitize {
		if s := util.SanitizeName(out); s != "" {
			out = s
		}
	}
	if trim > 0 {
		out = util.TrimName(out, trim)
	}
	return out
}
