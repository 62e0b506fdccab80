package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/di/providers"
)

// runHistory dumps recent scan sessions and match runs from the
// collection database. A digest argument switches to a copy lookup
// across all recorded sessions.
func runHistory(ctx context.Context, a *app) error {
	st, err := do.Invoke[*providers.StoreHandle](a.injector)
	if err != nil {
		return err
	}

	if len(a.args) > 0 {
		return printDigestCopies(ctx, st, a.args[0])
	}

	sessions, err := st.ListScanSessions(ctx, 10)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No scans recorded yet. Run 'romstack scan' first.")
		return nil
	}

	fmt.Println("=== Scan Sessions ===")
	for _, s := range sessions {
		fmt.Printf("%s  %s\n", s.ID, s.StartedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Root:  %s\n", s.Root)
		fmt.Printf("  Files: %d (%.1f MB), skipped %d, errors %d\n",
			s.TotalFiles, float64(s.TotalBytes)/(1024*1024), s.Skipped, s.Errors)
	}

	groups, err := st.ListDuplicateGroups(ctx, sessions[0].ID)
	if err != nil {
		return err
	}
	if len(groups) > 0 {
		var wasted int64
		for _, g := range groups {
			wasted += g.WastedBytes
		}
		fmt.Println("\n=== Duplicates (latest scan) ===")
		fmt.Printf("%d groups, %.1f MB wasted\n", len(groups), float64(wasted)/(1024*1024))
		for i, g := range groups {
			if i == 3 {
				fmt.Printf("... and %d more groups\n", len(groups)-3)
				break
			}
			fmt.Printf("  %s (%d copies)\n", g.Original.Name, len(g.Duplicates)+1)
		}
	}

	runs, err := st.ListMatchRuns(ctx, 10)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return nil
	}

	fmt.Println("\n=== Match Runs ===")
	for _, r := range runs {
		fmt.Printf("%s  %s\n", r.ID, r.StartedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Catalog: %s\n", filepath.Base(r.CatalogPath))
		fmt.Printf("  Matched: %d/%d with %d workers\n", r.Matched, r.TotalROMs, r.Workers)
	}

	unmatched, err := st.ListUnmatched(ctx, runs[0].ID)
	if err != nil {
		return err
	}
	if len(unmatched) > 0 {
		fmt.Println("\n=== Unmatched (latest run) ===")
		for i, name := range unmatched {
			if i == 5 {
				fmt.Printf("... and %d more\n", len(unmatched)-5)
				break
			}
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func printDigestCopies(ctx context.Context, st *providers.StoreHandle, digest string) error {
	roms, err := st.FindROMsByDigest(ctx, digest)
	if err != nil {
		return err
	}
	if len(roms) == 0 {
		fmt.Printf("No ROMs recorded with digest %s.\n", digest)
		return nil
	}
	fmt.Printf("%d copies of %s:\n", len(roms), digest)
	for _, r := range roms {
		fmt.Printf("  %s (session %s)\n", r.Path, r.SessionID)
	}
	return nil
}
