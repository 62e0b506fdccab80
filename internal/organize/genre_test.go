package organize

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/match"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRom(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCopyByGenre_PlacesFilesByGenre(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "organized_roms")

	sonic := writeRom(t, src, "Sonic the Hedgehog (USA).md", "sega")
	tetris := writeRom(t, src, "Tetris.gb", "puzzle")
	mystery := writeRom(t, src, "Qwertyuiop.bin", "data")

	results := []match.Result{
		{Path: sonic, Matched: true, Genre: "Action", FullGenre: "Action / Platformer", CatalogName: "Sonic The Hedgehog (World)"},
		{Path: tetris, Matched: true, Genre: "Puzzle", FullGenre: "Puzzle", CatalogName: "Tetris (World)"},
		{Path: mystery, Genre: "Unknown", FullGenre: "Unknown"},
	}

	g := NewGenreOrganizer(testLogger())
	outcome, err := g.CopyByGenre(context.Background(), results, GenreOptions{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Stats.Matched)
	assert.Equal(t, 1, outcome.Stats.Unmatched)
	assert.Equal(t, map[string]int{"Action": 1, "Puzzle": 1, "Unknown": 1}, outcome.Stats.Genres)

	assert.FileExists(t, filepath.Join(out, "Action", "Sonic the Hedgehog (USA).md"))
	assert.FileExists(t, filepath.Join(out, "Puzzle", "Tetris.gb"))
	assert.FileExists(t, filepath.Join(out, "Unknown", "Qwertyuiop.bin"))

	require.Len(t, outcome.Matched, 2)
	assert.Equal(t, "Sonic the Hedgehog (USA).md", outcome.Matched[0].RomName)
	assert.Equal(t, "Sonic The Hedgehog (World)", outcome.Matched[0].CatalogName)
	assert.Equal(t, "Action / Platformer", outcome.Matched[0].FullGenre)
	assert.Equal(t, []string{"Qwertyuiop.bin"}, outcome.Unmatched)
}

func TestCopyByGenre_GenreSanitizedToNothingFallsBack(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Oddity.md", "x")

	results := []match.Result{
		{Path: rom, Matched: true, Genre: "???", FullGenre: "???"},
	}

	g := NewGenreOrganizer(testLogger())
	outcome, err := g.CopyByGenre(context.Background(), results, GenreOptions{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Stats.Matched)
	assert.Equal(t, map[string]int{UnknownGenre: 1}, outcome.Stats.Genres)
	assert.FileExists(t, filepath.Join(out, UnknownGenre, "Oddity.md"))
}

func TestCopyByGenre_RerunLeavesExistingCopiesAlone(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Columns.md", "original")

	results := []match.Result{
		{Path: rom, Matched: true, Genre: "Puzzle", FullGenre: "Puzzle", CatalogName: "Columns (World)"},
	}

	g := NewGenreOrganizer(testLogger())
	first, err := g.CopyByGenre(context.Background(), results, GenreOptions{OutputDir: out})
	require.NoError(t, err)

	// Tamper with the copy so an overwrite would be visible.
	dst := filepath.Join(out, "Puzzle", "Columns.md")
	require.NoError(t, os.WriteFile(dst, []byte("tampered"), 0o644))

	second, err := g.CopyByGenre(context.Background(), results, GenreOptions{OutputDir: out})
	require.NoError(t, err)
	assert.Equal(t, first.Stats, second.Stats)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "tampered", string(data))
}

func TestCopyByGenre_PreservesModTime(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Shinobi.md", "ninja")

	stamp := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(rom, stamp, stamp))

	g := NewGenreOrganizer(testLogger())
	_, err := g.CopyByGenre(context.Background(), []match.Result{
		{Path: rom, Matched: true, Genre: "Action", FullGenre: "Action"},
	}, GenreOptions{OutputDir: out})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(out, "Action", "Shinobi.md"))
	require.NoError(t, err)
	assert.WithinDuration(t, stamp, info.ModTime(), time.Second)
}

func TestCopyByGenre_SanitizesAndTrimsDestinations(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Sonic (USA).md", "sega")

	g := NewGenreOrganizer(testLogger())
	_, err := g.CopyByGenre(context.Background(), []match.Result{
		{Path: rom, Matched: true, Genre: "Action", FullGenre: "Action"},
	}, GenreOptions{OutputDir: out, Sanitize: true, TrimLength: 10})
	require.NoError(t, err)

	// Parens are stripped, then the stem is cut to fit the cap with
	// the extension intact.
	assert.FileExists(t, filepath.Join(out, "Action", "Sonic U.md"))
}

func TestCopyByGenre_MissingSourceDoesNotStopPass(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Vanished.md", "gone")
	survivor := writeRom(t, src, "Alive.md", "here")
	require.NoError(t, os.Remove(rom))

	g := NewGenreOrganizer(testLogger())
	outcome, err := g.CopyByGenre(context.Background(), []match.Result{
		{Path: rom, Matched: true, Genre: "Action", FullGenre: "Action"},
		{Path: survivor, Matched: true, Genre: "Action", FullGenre: "Action"},
	}, GenreOptions{OutputDir: out})
	require.NoError(t, err)

	// Stats still count the failed file; only the copy is missing.
	assert.Equal(t, 2, outcome.Stats.Matched)
	assert.NoFileExists(t, filepath.Join(out, "Action", "Vanished.md"))
	assert.FileExists(t, filepath.Join(out, "Action", "Alive.md"))
}

func TestCopyByGenre_ProgressCallback(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Game.md", "x")

	type call struct{ done, total int }
	var calls []call

	g := NewGenreOrganizer(testLogger())
	_, err := g.CopyByGenre(context.Background(), []match.Result{
		{Path: rom, Matched: true, Genre: "Action", FullGenre: "Action"},
	}, GenreOptions{
		OutputDir:  out,
		OnProgress: func(done, total int) { calls = append(calls, call{done, total}) },
	})
	require.NoError(t, err)

	// One callback as the pass starts, one when it completes.
	require.Len(t, calls, 2)
	assert.Equal(t, call{0, 1}, calls[0])
	assert.Equal(t, call{1, 1}, calls[1])
}

func TestCopyByGenre_RequiresOutputDir(t *testing.T) {
	g := NewGenreOrganizer(testLogger())
	_, err := g.CopyByGenre(context.Background(), nil, GenreOptions{})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestCopyByGenre_Cancelled(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	rom := writeRom(t, src, "Game.md", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenreOrganizer(testLogger())
	_, err := g.CopyByGenre(ctx, []match.Result{
		{Path: rom, Matched: true, Genre: "Action", FullGenre: "Action"},
	}, GenreOptions{OutputDir: out})
	assert.ErrorIs(t, err, context.Canceled)
}
