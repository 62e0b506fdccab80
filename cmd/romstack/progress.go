package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/romstackapp/romstack/internal/match"
	"github.com/romstackapp/romstack/internal/scanner"
)

// scanBar renders scan progress: the walk spins with an unknown total,
// hashing switches to a real one.
func scanBar() (*progressbar.ProgressBar, func(scanner.Progress)) {
	bar := progressbar.Default(-1, "Walking")
	return bar, func(p scanner.Progress) {
		switch p.Phase {
		case scanner.PhaseHashing:
			if p.Total > 0 && bar.GetMax() == -1 {
				bar.ChangeMax64(int64(p.Total))
				bar.Describe("Hashing")
			}
			_ = bar.Set(p.Current)
		case scanner.PhaseDeduping:
			bar.Describe("Deduping")
		case scanner.PhaseComplete:
			_ = bar.Finish()
		default:
			_ = bar.Set(p.Current)
		}
	}
}

// matchBar renders scheduler progress over a known file count.
func matchBar(total int) (*progressbar.ProgressBar, func(match.Progress)) {
	bar := progressbar.Default(int64(total), "Matching")
	return bar, func(p match.Progress) {
		bar.Describe(fmt.Sprintf("Matching (batch %d/%d)", p.BatchesDone, p.BatchCount))
		_ = bar.Set(p.Processed)
	}
}

// copyBar renders copy-pass progress.
func copyBar(label string) (*progressbar.ProgressBar, func(done, total int)) {
	bar := progressbar.Default(-1, label)
	return bar, func(done, total int) {
		if total > 0 && bar.GetMax() == -1 {
			bar.ChangeMax64(int64(total))
		}
		_ = bar.Set(done)
	}
}
