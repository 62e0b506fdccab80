package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func romFile(name, digest string, size int64) File {
	return File{
		Name:    name,
		Path:    "/roms/" + name,
		RelPath: name,
		Digest:  digest,
		Size:    size,
	}
}

func TestFindDuplicates_GroupsByDigest(t *testing.T) {
	files := []File{
		romFile("a.nes", "d1", 10),
		romFile("b.nes", "d2", 20),
		romFile("c.nes", "d1", 10),
		romFile("d.nes", "d3", 30),
	}

	groups := FindDuplicates(files)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.Digest != "d1" {
		t.Errorf("group digest = %q, want d1", g.Digest)
	}
	if g.Original.Name != "a.nes" {
		t.Errorf("original = %q, want a.nes", g.Original.Name)
	}
	if len(g.Duplicates) != 1 || g.Duplicates[0].Name != "c.nes" {
		t.Errorf("duplicates = %v, want [c.nes]", g.Duplicates)
	}
	if g.WastedBytes != 10 {
		t.Errorf("wasted bytes = %d, want 10", g.WastedBytes)
	}
	if g.ID == "" {
		t.Error("group ID should be set")
	}
}

func TestFindDuplicates_NoDuplicates(t *testing.T) {
	files := []File{
		romFile("a.nes", "d1", 10),
		romFile("b.nes", "d2", 20),
	}

	if groups := FindDuplicates(files); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestFindDuplicates_FirstSeenIsOriginal(t *testing.T) {
	files := []File{
		romFile("first.nes", "same", 5),
		romFile("second.nes", "same", 5),
		romFile("third.nes", "same", 5),
	}

	groups := FindDuplicates(files)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.Original.Name != "first.nes" {
		t.Errorf("original = %q, want first.nes", g.Original.Name)
	}
	if len(g.Duplicates) != 2 {
		t.Fatalf("expected 2 duplicates, got %d", len(g.Duplicates))
	}
	if g.Duplicates[0].Name != "second.nes" || g.Duplicates[1].Name != "third.nes" {
		t.Errorf("duplicates out of order: %q, %q", g.Duplicates[0].Name, g.Duplicates[1].Name)
	}
	if g.WastedBytes != 10 {
		t.Errorf("wasted bytes = %d, want 10", g.WastedBytes)
	}
}

func TestFindDuplicates_GroupOrderFollowsScanOrder(t *testing.T) {
	files := []File{
		romFile("a.nes", "late", 1),
		romFile("b.nes", "early", 1),
		romFile("c.nes", "late", 1),
		romFile("d.nes", "early", 1),
	}

	groups := FindDuplicates(files)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Digest != "late" || groups[1].Digest != "early" {
		t.Errorf("group order = [%s, %s], want [late, early]", groups[0].Digest, groups[1].Digest)
	}
	if groups[0].ID == groups[1].ID {
		t.Error("group IDs should be unique")
	}
}

func TestFindDuplicates_SkipsEmptyDigests(t *testing.T) {
	files := []File{
		romFile("a.nes", "", 1),
		romFile("b.nes", "", 1),
	}

	if groups := FindDuplicates(files); len(groups) != 0 {
		t.Errorf("expected no groups for empty digests, got %d", len(groups))
	}
}

func TestMoveDuplicates(t *testing.T) {
	tmpDir := t.TempDir()

	original := filepath.Join(tmpDir, "keep.nes")
	duplicate := filepath.Join(tmpDir, "extra.nes")
	for _, p := range []string{original, duplicate} {
		if err := os.WriteFile(p, []byte("same"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s := New(testLogger(), []string{".nes"}, AlgoSHA1)
	res, err := s.Scan(context.Background(), tmpDir, ScanOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(res.Duplicates))
	}

	dupeDir := filepath.Join(tmpDir, "duplicates")
	moved, err := s.MoveDuplicates(res.Duplicates, dupeDir)
	if err != nil {
		t.Fatalf("MoveDuplicates() error = %v", err)
	}
	if moved != 1 {
		t.Errorf("moved = %d, want 1", moved)
	}

	// The group's original survives in place.
	if _, err := os.Stat(res.Duplicates[0].Original.Path); err != nil {
		t.Errorf("original should remain: %v", err)
	}
	// The duplicate now lives in the quarantine directory.
	movedPath := filepath.Join(dupeDir, res.Duplicates[0].Duplicates[0].Name)
	if _, err := os.Stat(movedPath); err != nil {
		t.Errorf("duplicate should be in %s: %v", dupeDir, err)
	}
	if _, err := os.Stat(res.Duplicates[0].Duplicates[0].Path); !os.IsNotExist(err) {
		t.Error("duplicate should no longer exist at its source path")
	}
}

func TestMoveDuplicates_SkipsExistingTarget(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "game.nes")
	if err := os.WriteFile(src, []byte("rom"), 0644); err != nil {
		t.Fatal(err)
	}

	dupeDir := filepath.Join(tmpDir, "duplicates")
	if err := os.MkdirAll(dupeDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dupeDir, "game.nes"), []byte("occupied"), 0644); err != nil {
		t.Fatal(err)
	}

	groups := []DuplicateGroup{{
		ID:         "g1",
		Digest:     "d1",
		Original:   romFile("other.nes", "d1", 3),
		Duplicates: []File{{Name: "game.nes", Path: src, Digest: "d1", Size: 3}},
	}}

	s := New(testLogger(), []string{".nes"}, AlgoSHA1)
	moved, err := s.MoveDuplicates(groups, dupeDir)
	if err != nil {
		t.Fatalf("MoveDuplicates() error = %v", err)
	}
	if moved != 0 {
		t.Errorf("moved = %d, want 0", moved)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should remain when target exists: %v", err)
	}
}

func TestMoveDuplicates_NoGroups(t *testing.T) {
	tmpDir := t.TempDir()
	dupeDir := filepath.Join(tmpDir, "duplicates")

	s := New(testLogger(), []string{".nes"}, AlgoSHA1)
	moved, err := s.MoveDuplicates(nil, dupeDir)
	if err != nil {
		t.Fatalf("MoveDuplicates() error = %v", err)
	}
	if moved != 0 {
		t.Errorf("moved = %d, want 0", moved)
	}
	if _, err := os.Stat(dupeDir); !os.IsNotExist(err) {
		t.Error("quarantine dir should not be created when there is nothing to move")
	}
}
