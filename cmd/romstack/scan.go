package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/di/providers"
	"github.com/romstackapp/romstack/internal/match"
	"github.com/romstackapp/romstack/internal/scanner"
	"github.com/romstackapp/romstack/internal/search"
	"github.com/romstackapp/romstack/internal/store"
)

// runScan fingerprints the collection, records the session, and
// refreshes the search index.
func runScan(ctx context.Context, a *app) error {
	root, err := a.collectionRoot()
	if err != nil {
		return err
	}

	fmt.Printf("Scanning collection: %s\n", root)

	sc := do.MustInvoke[*scanner.Scanner](a.injector)
	bar, onProgress := scanBar()
	result, err := sc.Scan(ctx, root, scanner.ScanOptions{
		Workers:    a.cfg.Organize.Workers,
		OnProgress: onProgress,
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if a.cfg.Dedup.MoveDuplicates && len(result.Duplicates) > 0 {
		quarantine := filepath.Join(a.cfg.Output.Dir, "duplicates")
		moved, err := sc.MoveDuplicates(result.Duplicates, quarantine)
		if err != nil {
			return err
		}
		fmt.Printf("Moved %d duplicates to %s\n", moved, quarantine)
	}

	sess, err := persistScan(ctx, a, result, nil)
	if err != nil {
		return err
	}

	var wasted int64
	for _, g := range result.Duplicates {
		wasted += g.WastedBytes
	}

	fmt.Println()
	fmt.Printf("Files scanned: %d\n", len(result.Files))
	fmt.Printf("Skipped (non-ROM): %d\n", result.Skipped)
	fmt.Printf("Duplicate groups: %d (%.1f MB wasted)\n", len(result.Duplicates), float64(wasted)/(1024*1024))
	fmt.Printf("Errors: %d\n", result.Errors)
	fmt.Printf("Session: %s (%s)\n", sess.ID, a.cfg.Store.DatabasePath)
	return nil
}

// persistScan saves a scan session and rebuilds the search index from
// its rows. matches carries the genre outcome per path and may be nil
// for scans without a matching phase; the index always mirrors the
// latest session, so stale rows from earlier sessions never shadow
// fresh ones.
func persistScan(ctx context.Context, a *app, result *scanner.ScanResult, matches []match.Result) (*store.ScanSession, error) {
	st, err := do.Invoke[*providers.StoreHandle](a.injector)
	if err != nil {
		return nil, err
	}
	sess, err := st.SaveScan(ctx, result)
	if err != nil {
		return nil, err
	}

	idx, err := do.Invoke[*providers.SearchIndexHandle](a.injector)
	if err != nil {
		return sess, err
	}
	if err := idx.Rebuild(); err != nil {
		return sess, err
	}

	byPath := make(map[string]match.Result, len(matches))
	for _, m := range matches {
		byPath[m.Path] = m
	}

	roms, err := st.ListROMs(ctx, sess.ID)
	if err != nil {
		return sess, err
	}

	docs := make([]*search.RomDocument, 0, len(roms))
	for _, rom := range roms {
		genre, fullGenre := "", ""
		if m, ok := byPath[rom.Path]; ok && m.Matched {
			genre, fullGenre = m.Genre, m.FullGenre
		}
		docs = append(docs, search.RomToDocument(rom, genre, fullGenre))
	}
	if err := idx.IndexDocuments(docs); err != nil {
		return sess, err
	}

	a.log.Info("collection indexed", "session", sess.ID, "documents", len(docs))
	return sess, nil
}
