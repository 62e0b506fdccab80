package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/match"
	"github.com/romstackapp/romstack/internal/store"
)

func sampleMatchResults() []match.Result {
	return []match.Result{
		{
			Path: "/roms/Sonic.md", Matched: true,
			Genre: "Action", FullGenre: "Action / Platformer",
			CatalogName: "Sonic The Hedgehog (World)",
		},
		{
			Path: "/roms/Columns.md", Matched: true,
			Genre: "Puzzle", FullGenre: "Puzzle",
			CatalogName: "Columns (World)",
		},
		{
			Path: "/roms/Qwerty.bin", Matched: false,
			Genre: "Unknown", FullGenre: "Unknown",
		},
	}
}

func sampleMatchRun(started time.Time) *store.MatchRun {
	finished := started.Add(30 * time.Second)
	return &store.MatchRun{
		CatalogPath: "/catalogs/genesis.xml",
		Workers:     8,
		StartedAt:   started,
		FinishedAt:  &finished,
	}
}

func TestSaveMatchRun_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	run := sampleMatchRun(started)
	if err := s.SaveMatchRun(ctx, run, sampleMatchResults()); err != nil {
		t.Fatalf("SaveMatchRun: %v", err)
	}

	if !strings.HasPrefix(run.ID, "run-") {
		t.Errorf("run ID = %q, want run- prefix", run.ID)
	}
	if run.TotalROMs != 3 || run.Matched != 2 || run.Unmatched != 1 {
		t.Errorf("totals = %d/%d/%d, want 3/2/1", run.TotalROMs, run.Matched, run.Unmatched)
	}

	got, err := s.GetMatchRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetMatchRun: %v", err)
	}
	if got.CatalogPath != "/catalogs/genesis.xml" {
		t.Errorf("CatalogPath = %q", got.CatalogPath)
	}
	if got.Workers != 8 {
		t.Errorf("Workers = %d, want 8", got.Workers)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(started.Add(30*time.Second)) {
		t.Errorf("FinishedAt = %v", got.FinishedAt)
	}
	if got.SessionID != "" {
		t.Errorf("SessionID = %q, want empty", got.SessionID)
	}
	if got.TotalROMs != 3 || got.Matched != 2 || got.Unmatched != 1 {
		t.Errorf("stored totals = %d/%d/%d, want 3/2/1", got.TotalROMs, got.Matched, got.Unmatched)
	}
}

func TestSaveMatchRun_LinksScanSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	sess, err := s.SaveScan(ctx, sampleScanResult(started))
	if err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	run := sampleMatchRun(started)
	run.SessionID = sess.ID
	if err := s.SaveMatchRun(ctx, run, sampleMatchResults()); err != nil {
		t.Fatalf("SaveMatchRun: %v", err)
	}

	got, err := s.GetMatchRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetMatchRun: %v", err)
	}
	if got.SessionID != sess.ID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, sess.ID)
	}
}

func TestListMatchResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	run := sampleMatchRun(started)
	if err := s.SaveMatchRun(ctx, run, sampleMatchResults()); err != nil {
		t.Fatalf("SaveMatchRun: %v", err)
	}

	results, err := s.ListMatchResults(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListMatchResults: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// Path order: Columns, Qwerty, Sonic.
	if results[0].RomName != "Columns.md" {
		t.Errorf("results[0].RomName = %q, want Columns.md", results[0].RomName)
	}
	if results[1].RomName != "Qwerty.bin" {
		t.Errorf("results[1].RomName = %q, want Qwerty.bin", results[1].RomName)
	}
	if results[1].Matched {
		t.Error("Qwerty.bin should be unmatched")
	}
	if results[1].CatalogName != "" {
		t.Errorf("unmatched CatalogName = %q, want empty", results[1].CatalogName)
	}
	if results[2].Genre != "Action" || results[2].FullGenre != "Action / Platformer" {
		t.Errorf("Sonic genres = %q/%q", results[2].Genre, results[2].FullGenre)
	}
	if results[2].CatalogName != "Sonic The Hedgehog (World)" {
		t.Errorf("Sonic CatalogName = %q", results[2].CatalogName)
	}
}

func TestListUnmatched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	run := sampleMatchRun(started)
	if err := s.SaveMatchRun(ctx, run, sampleMatchResults()); err != nil {
		t.Fatalf("SaveMatchRun: %v", err)
	}

	names, err := s.ListUnmatched(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListUnmatched: %v", err)
	}
	if len(names) != 1 || names[0] != "Qwerty.bin" {
		t.Errorf("unmatched = %v, want [Qwerty.bin]", names)
	}
}

func TestListMatchRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		run := sampleMatchRun(base.Add(time.Duration(i) * time.Hour))
		if err := s.SaveMatchRun(ctx, run, nil); err != nil {
			t.Fatalf("SaveMatchRun %d: %v", i, err)
		}
		ids = append(ids, run.ID)
	}

	all, err := s.ListMatchRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListMatchRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d runs, want 3", len(all))
	}
	if all[0].ID != ids[2] {
		t.Errorf("newest first: got %q, want %q", all[0].ID, ids[2])
	}

	limited, err := s.ListMatchRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListMatchRuns limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d runs, want 1", len(limited))
	}
}

func TestGetMatchRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMatchRun(context.Background(), "run-missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestSaveMatchRun_Nil(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveMatchRun(context.Background(), nil, nil); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}
