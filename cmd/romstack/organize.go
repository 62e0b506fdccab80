package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/do/v2"
	"github.com/schollz/progressbar/v3"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/di/providers"
	"github.com/romstackapp/romstack/internal/match"
	"github.com/romstackapp/romstack/internal/organize"
	"github.com/romstackapp/romstack/internal/report"
	"github.com/romstackapp/romstack/internal/scanner"
	"github.com/romstackapp/romstack/internal/store"
)

// runOrganizeGenre resolves the catalog and worker prompts, then runs
// one full genre pass.
func runOrganizeGenre(ctx context.Context, a *app) error {
	if _, err := a.collectionRoot(); err != nil {
		return err
	}
	if _, err := a.resolveCatalog(); err != nil {
		return err
	}

	return runGenrePass(ctx, a, genrePass{
		workers: a.resolveWorkers(),
		debug:   a.resolveDebug(),
		bars:    true,
	})
}

// genrePass configures one scan-match-copy pass. Watch mode reuses the
// pass without bars so its log stream stays readable.
type genrePass struct {
	workers int
	debug   bool
	bars    bool
}

// runGenrePass scans the collection, matches every ROM against the
// catalog, copies matches into genre folders, writes the reports, and
// records the run.
func runGenrePass(ctx context.Context, a *app, p genrePass) error {
	// Catalog first: a broken gamelist should abort before the walk.
	index, err := do.Invoke[*catalog.Index](a.injector)
	if err != nil {
		return err
	}

	sc := do.MustInvoke[*scanner.Scanner](a.injector)

	var sbar *progressbar.ProgressBar
	var onScan func(scanner.Progress)
	if p.bars {
		sbar, onScan = scanBar()
	}
	result, err := sc.Scan(ctx, a.cfg.Library.Root, scanner.ScanOptions{
		Workers:    p.workers,
		OnProgress: onScan,
	})
	if sbar != nil {
		_ = sbar.Finish()
	}
	if err != nil {
		return err
	}

	if len(result.Files) == 0 {
		fmt.Println("No ROM files found.")
		return nil
	}

	paths := make([]string, len(result.Files))
	for i, f := range result.Files {
		paths[i] = f.Path
	}

	sched := do.MustInvoke[*match.Scheduler](a.injector)

	var mbar *progressbar.ProgressBar
	var onMatch func(match.Progress)
	if p.bars {
		mbar, onMatch = matchBar(len(paths))
	}
	matchStart := time.Now()
	results, err := sched.MatchAll(ctx, paths, match.Options{
		Workers:    p.workers,
		Debug:      p.debug,
		TraceTo:    os.Stdout,
		OnProgress: onMatch,
	})
	if mbar != nil {
		_ = mbar.Finish()
	}
	if err != nil {
		return err
	}
	matchDur := time.Since(matchStart)

	org := do.MustInvoke[*organize.GenreOrganizer](a.injector)

	var cbar *progressbar.ProgressBar
	var onCopy func(done, total int)
	if p.bars {
		cbar, onCopy = copyBar("Copying")
	}
	copyStart := time.Now()
	outcome, err := org.CopyByGenre(ctx, results, organize.GenreOptions{
		OutputDir:  a.cfg.Output.Dir,
		Sanitize:   a.cfg.Output.SanitizeNames,
		TrimLength: a.cfg.Output.TrimLength,
		OnProgress: onCopy,
	})
	if cbar != nil {
		_ = cbar.Finish()
	}
	if err != nil {
		return err
	}
	copyDur := time.Since(copyStart)

	// Reports are best effort and land even when the store save fails.
	rw := do.MustInvoke[*report.Writer](a.injector)
	rw.WriteAll(report.Run{
		Outcome:      outcome,
		TotalROMs:    len(results),
		Timing:       report.Timing{Matching: matchDur, Copying: copyDur, Workers: p.workers},
		Files:        result.Files,
		CatalogNames: index.Names(),
	})

	sess, err := persistScan(ctx, a, result, results)
	if err != nil {
		return err
	}

	finished := time.Now()
	st := do.MustInvoke[*providers.StoreHandle](a.injector)
	if err := st.SaveMatchRun(ctx, &store.MatchRun{
		SessionID:   sess.ID,
		CatalogPath: a.cfg.Library.CatalogPath,
		Workers:     p.workers,
		StartedAt:   matchStart,
		FinishedAt:  &finished,
	}, results); err != nil {
		return err
	}

	total := len(results)
	rate := 0.0
	if s := (matchDur + copyDur).Seconds(); s > 0 {
		rate = float64(total) / s
	}
	fmt.Println()
	fmt.Printf("Matched %d/%d ROMs (%.1f%%) across %d genres\n",
		outcome.Stats.Matched, total,
		float64(outcome.Stats.Matched)/float64(total)*100,
		len(outcome.Stats.Genres))
	fmt.Printf("Matching %.2fs, copying %.2fs (%.1f ROMs/s)\n",
		matchDur.Seconds(), copyDur.Seconds(), rate)
	fmt.Printf("Output and reports: %s\n", a.cfg.Output.Dir)
	return nil
}

// runOrganizeLetter scans the collection and copies it into A-Z
// folders.
func runOrganizeLetter(ctx context.Context, a *app) error {
	root, err := a.collectionRoot()
	if err != nil {
		return err
	}

	fmt.Printf("Organizing %s alphabetically\n", root)

	sc := do.MustInvoke[*scanner.Scanner](a.injector)
	sbar, onScan := scanBar()
	result, err := sc.Scan(ctx, root, scanner.ScanOptions{
		Workers:    a.cfg.Organize.Workers,
		OnProgress: onScan,
	})
	_ = sbar.Finish()
	if err != nil {
		return err
	}

	if len(result.Files) == 0 {
		fmt.Println("No ROM files found.")
		return nil
	}

	files := result.Files
	if a.cfg.Dedup.MoveDuplicates && len(result.Duplicates) > 0 {
		quarantine := filepath.Join(a.cfg.Output.Dir, "duplicates")
		moved, err := sc.MoveDuplicates(result.Duplicates, quarantine)
		if err != nil {
			return err
		}
		fmt.Printf("Moved %d duplicates to %s\n", moved, quarantine)
		// Quarantined files are no longer at their scanned paths.
		files = withoutDuplicates(result)
	}

	org := do.MustInvoke[*organize.AlphabeticalOrganizer](a.injector)
	cbar, onCopy := copyBar("Copying")
	stats, err := org.CopyByLetter(ctx, files, organize.AlphaOptions{
		OutputDir:         a.cfg.Output.Dir,
		MaxFilesPerFolder: a.cfg.Organize.MaxFilesPerFolder,
		TrimLength:        a.cfg.Organize.LetterTrimLength,
		OnProgress:        onCopy,
	})
	_ = cbar.Finish()
	if err != nil {
		return err
	}

	if _, err := persistScan(ctx, a, result, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Copied %d files into %d folders (%d skipped)\n",
		stats.Copied, len(stats.Folders), stats.Skipped)
	fmt.Printf("Output: %s\n", a.cfg.Output.Dir)
	return nil
}

// withoutDuplicates filters a scan's file list down to group originals
// and unique files.
func withoutDuplicates(result *scanner.ScanResult) []scanner.File {
	gone := make(map[string]bool)
	for _, g := range result.Duplicates {
		for _, d := range g.Duplicates {
			gone[d.Path] = true
		}
	}
	kept := make([]scanner.File, 0, len(result.Files)-len(gone))
	for _, f := range result.Files {
		if !gone[f.Path] {
			kept = append(kept, f)
		}
	}
	return kept
}
