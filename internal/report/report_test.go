package report

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romstackapp/romstack/internal/organize"
	"github.com/romstackapp/romstack/internal/scanner"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readReport(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestWriteMatchingResults_Format(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(testLogger(), dir)

	outcome := &organize.Outcome{
		Stats: organize.Stats{Matched: 2, Unmatched: 1},
		Matched: []organize.MatchedDetail{
			{RomName: "Sonic.md", CatalogName: "Sonic The Hedgehog (World)", FullGenre: "Action / Platformer"},
			{RomName: "Columns.md", CatalogName: "Columns (World)", FullGenre: "Puzzle"},
		},
		Unmatched: []string{"Zzap.bin"},
	}
	timing := Timing{
		Matching: 2500 * time.Millisecond,
		Copying:  1500 * time.Millisecond,
		Workers:  4,
	}

	require.NoError(t, w.WriteMatchingResults(outcome, 8, timing))

	want := strings.Join([]string{
		"MULTI-THREADED ROM MATCHING RESULTS",
		strings.Repeat("=", 60),
		"",
		"Processing time: 4.00 seconds",
		"  - Matching: 2.50s",
		"  - Copying: 1.50s",
		"Processing rate: 2.0 ROMs/second",
		"Parallel workers: 4",
		"",
		"Total ROMs: 8",
		"Matched: 2",
		"Unmatched: 1",
		"Match rate: 25.0%",
		"",
		"MATCHED ROMS:",
		strings.Repeat("-", 40),
		"Columns.md -> Columns (World) -> Puzzle",
		"Sonic.md -> Sonic The Hedgehog (World) -> Action / Platformer",
		"",
		"UNMATCHED ROMS (1):",
		strings.Repeat("-", 40),
		"Zzap.bin",
		"",
	}, "\n")
	assert.Equal(t, want, readReport(t, dir, MatchingResultsFile))
}

func TestWriteMatchingResults_EmptyRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(testLogger(), dir)

	require.NoError(t, w.WriteMatchingResults(&organize.Outcome{}, 0, Timing{}))

	got := readReport(t, dir, MatchingResultsFile)
	assert.Contains(t, got, "Processing rate: 0.0 ROMs/second")
	assert.Contains(t, got, "Match rate: 0.0%")
	assert.Contains(t, got, "UNMATCHED ROMS (0):")
}

func TestAnalyze_Patterns(t *testing.T) {
	files := []scanner.File{
		{Name: "Sonic the Hedgehog (USA).md"},
		{Name: "Sonic 3D Blast (USA) (Rev 1).md"},
		{Name: "Columns II (World).md"},
		{Name: "Tetris.gb"},
	}

	a := Analyze(files)

	assert.Equal(t, 4, a.TotalROMs)
	assert.Equal(t, []string{
		"Sonic the Hedgehog (USA)",
		"Sonic 3D Blast (USA) (Rev 1)",
		"Columns II (World)",
		"Tetris",
	}, a.SampleNames)
	// Single-word names contribute no prefix; tags dedupe after the
	// trailing space from multi-tag names is trimmed.
	assert.Equal(t, []string{"Columns", "Sonic"}, a.CommonPrefixes)
	assert.Equal(t, []string{"(USA)", "(World)"}, a.CommonSuffixes)
}

func TestAnalyze_SampleCap(t *testing.T) {
	files := make([]scanner.File, 0, 60)
	for i := range 60 {
		files = append(files, scanner.File{Name: "Game " + string(rune('A'+i%26)) + ".md"})
	}

	a := Analyze(files)

	assert.Equal(t, 60, a.TotalROMs)
	assert.Len(t, a.SampleNames, analysisSampleSize)
}

func TestWriteAnalysis_JSON(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(testLogger(), dir)

	a := Analyze([]scanner.File{{Name: "Sonic.md"}, {Name: "Tetris.gb"}})
	require.NoError(t, w.WriteAnalysis(a))

	got := readReport(t, dir, AnalysisFile)
	assert.JSONEq(t, `{
		"total_roms": 2,
		"sample_names": ["Sonic", "Tetris"],
		"common_prefixes": [],
		"common_suffixes": []
	}`, got)
}

func TestWriteCatalogNames_Listing(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(testLogger(), dir)

	require.NoError(t, w.WriteCatalogNames([]string{
		"Sonic The Hedgehog (USA)",
		"Alien 3 (Europe)",
		"Tetris",
	}))

	want := strings.Join([]string{
		"Games found in XML (Original -> Clean):",
		strings.Repeat("-", 50),
		"Alien 3 (Europe) -> Alien 3",
		"Sonic The Hedgehog (USA) -> Sonic The Hedgehog",
		"Tetris",
		"",
	}, "\n")
	assert.Equal(t, want, readReport(t, dir, CatalogNamesFile))
}

func TestWriteAll_WritesEveryReport(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(testLogger(), dir)

	w.WriteAll(Run{
		Outcome:      &organize.Outcome{},
		TotalROMs:    0,
		Files:        []scanner.File{{Name: "Sonic.md"}},
		CatalogNames: []string{"Sonic The Hedgehog (USA)"},
	})

	assert.FileExists(t, filepath.Join(dir, MatchingResultsFile))
	assert.FileExists(t, filepath.Join(dir, AnalysisFile))
	assert.FileExists(t, filepath.Join(dir, CatalogNamesFile))
}

func TestWriteAll_FailuresDoNotPropagate(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Target directory is actually a file, so every write fails.
	w := NewWriter(testLogger(), blocker)
	w.WriteAll(Run{Outcome: &organize.Outcome{}})

	info, err := os.Stat(blocker)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
