package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/romstackapp/romstack/internal/errors"
)

func walkFile(t *testing.T, path string) WalkResult {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return WalkResult{
		Path:    path,
		RelPath: filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func TestHasher_Hash_KnownDigests(t *testing.T) {
	tests := []struct {
		algorithm string
		want      string
	}{
		{AlgoSHA1, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{AlgoMD5, "5d41402abc4b2a76b9719d911017c592"},
		{AlgoSHA256, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{AlgoBLAKE2b, "324dcf027dd4a30a932c441f365a25e86b173defa4b8e58948253471b81b72cf"},
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "game.nes")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			hasher := NewHasher(testLogger(), tt.algorithm)
			files, scanErrors, err := hasher.Hash(context.Background(), []WalkResult{walkFile(t, path)}, HashOptions{})
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if len(scanErrors) != 0 {
				t.Fatalf("unexpected scan errors: %v", scanErrors)
			}
			if len(files) != 1 {
				t.Fatalf("expected 1 file, got %d", len(files))
			}
			if files[0].Digest != tt.want {
				t.Errorf("%s digest = %s, want %s", tt.algorithm, files[0].Digest, tt.want)
			}
		})
	}
}

func TestHasher_Hash_BuildsRecord(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Sonic (USA).MD")
	if err := os.WriteFile(path, []byte("sega"), 0644); err != nil {
		t.Fatal(err)
	}

	hasher := NewHasher(testLogger(), AlgoSHA1)
	files, _, err := hasher.Hash(context.Background(), []WalkResult{walkFile(t, path)}, HashOptions{})
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}

	f := files[0]
	if f.Name != "Sonic (USA).MD" {
		t.Errorf("Name = %q, want %q", f.Name, "Sonic (USA).MD")
	}
	if f.Path != path {
		t.Errorf("Path = %q, want %q", f.Path, path)
	}
	if f.Ext != ".md" {
		t.Errorf("Ext = %q, want %q", f.Ext, ".md")
	}
	if f.Size != 4 {
		t.Errorf("Size = %d, want 4", f.Size)
	}
	if f.Modified.IsZero() {
		t.Error("Modified should be set")
	}
	if f.Digest == "" {
		t.Error("Digest should be set")
	}
}

func TestHasher_DefaultsToSHA1(t *testing.T) {
	hasher := NewHasher(testLogger(), "")
	if got := hasher.Algorithm(); got != AlgoSHA1 {
		t.Errorf("Algorithm() = %q, want %q", got, AlgoSHA1)
	}
}

func TestHasher_Hash_PreservesWalkOrder(t *testing.T) {
	tmpDir := t.TempDir()

	names := []string{"delta.nes", "alpha.nes", "echo.nes", "bravo.nes", "charlie.nes"}
	var walked []WalkResult
	for i, name := range names {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
		walked = append(walked, walkFile(t, path))
	}

	hasher := NewHasher(testLogger(), AlgoSHA1)
	files, _, err := hasher.Hash(context.Background(), walked, HashOptions{Workers: 4})
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if len(files) != len(names) {
		t.Fatalf("expected %d files, got %d", len(names), len(files))
	}
	for i, f := range files {
		if f.Name != names[i] {
			t.Errorf("files[%d].Name = %q, want %q", i, f.Name, names[i])
		}
	}
}

func TestHasher_Hash_UnreadableFileRecorded(t *testing.T) {
	tmpDir := t.TempDir()

	good := filepath.Join(tmpDir, "good.nes")
	if err := os.WriteFile(good, []byte("ok"), 0644); err != nil {
		t.Fatal(err)
	}
	gone := filepath.Join(tmpDir, "gone.nes")
	if err := os.WriteFile(gone, []byte("bye"), 0644); err != nil {
		t.Fatal(err)
	}

	walked := []WalkResult{walkFile(t, good), walkFile(t, gone)}

	// Removing the file after the walk mimics a ROM deleted mid-scan.
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	hasher := NewHasher(testLogger(), AlgoSHA1)
	files, scanErrors, err := hasher.Hash(context.Background(), walked, HashOptions{Workers: 2})
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 surviving file, got %d", len(files))
	}
	if files[0].Name != "good.nes" {
		t.Errorf("surviving file = %q, want good.nes", files[0].Name)
	}
	if len(scanErrors) != 1 {
		t.Fatalf("expected 1 scan error, got %d", len(scanErrors))
	}
	if scanErrors[0].Path != gone {
		t.Errorf("error path = %q, want %q", scanErrors[0].Path, gone)
	}
	if scanErrors[0].Phase != PhaseHashing {
		t.Errorf("error phase = %q, want %q", scanErrors[0].Phase, PhaseHashing)
	}
}

func TestHasher_Hash_UnsupportedAlgorithm(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "game.nes")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	hasher := NewHasher(testLogger(), "crc32")
	_, _, err := hasher.Hash(context.Background(), []WalkResult{walkFile(t, path)}, HashOptions{})
	if err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
	if !errors.Is(err, errors.ErrScan) {
		t.Errorf("expected scan error, got %v", err)
	}
}

func TestHasher_Hash_EmptyInput(t *testing.T) {
	hasher := NewHasher(testLogger(), AlgoSHA1)
	files, scanErrors, err := hasher.Hash(context.Background(), nil, HashOptions{})
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if files == nil {
		t.Error("expected non-nil slice for empty input")
	}
	if len(files) != 0 || len(scanErrors) != 0 {
		t.Errorf("expected empty results, got %d files, %d errors", len(files), len(scanErrors))
	}
}

func TestHasher_Hash_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	var walked []WalkResult
	for _, name := range []string{"a.nes", "b.nes", "c.nes"} {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
		walked = append(walked, walkFile(t, path))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hasher := NewHasher(testLogger(), AlgoSHA1)
	_, _, err := hasher.Hash(ctx, walked, HashOptions{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHasher_Hash_WorkerCountDoesNotChangeResults(t *testing.T) {
	tmpDir := t.TempDir()
	var walked []WalkResult
	for i := 0; i < 6; i++ {
		path := filepath.Join(tmpDir, "game"+string(rune('0'+i))+".nes")
		if err := os.WriteFile(path, []byte{byte(i), byte(i + 1)}, 0644); err != nil {
			t.Fatal(err)
		}
		walked = append(walked, walkFile(t, path))
	}

	digests := func(workers int) map[string]string {
		hasher := NewHasher(testLogger(), AlgoSHA1)
		files, _, err := hasher.Hash(context.Background(), walked, HashOptions{Workers: workers})
		if err != nil {
			t.Fatalf("Hash() with %d workers: %v", workers, err)
		}
		out := make(map[string]string, len(files))
		for _, f := range files {
			out[f.Name] = f.Digest
		}
		return out
	}

	serial := digests(1)
	parallel := digests(8)

	if len(serial) != len(parallel) {
		t.Fatalf("worker counts disagree: %d vs %d files", len(serial), len(parallel))
	}
	for name, d := range serial {
		if parallel[name] != d {
			t.Errorf("digest for %s differs across worker counts", name)
		}
	}
}
