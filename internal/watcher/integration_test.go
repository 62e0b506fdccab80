//go:build integration

package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_LargeFileDetection verifies a chunked transfer settles
// into a single event carrying the final size.
func TestIntegration_LargeFileDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	opts := Options{
		SettleDelay: 100 * time.Millisecond,
	}

	w, err := New(testLogger(), opts)
	require.NoError(t, err)
	defer w.Stop()

	tmpDir := t.TempDir()
	require.NoError(t, w.Watch(tmpDir))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go w.Start(ctx)

	// Create a "large" file (10MB)
	testFile := filepath.Join(tmpDir, "Sonic CD.iso")
	largeContent := make([]byte, 10*1024*1024)

	// Write in chunks to simulate a real transfer
	f, err := os.Create(testFile)
	require.NoError(t, err)

	chunkSize := 1024 * 1024
	for i := 0; i < len(largeContent); i += chunkSize {
		end := i + chunkSize
		if end > len(largeContent) {
			end = len(largeContent)
		}
		_, err := f.Write(largeContent[i:end])
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond) // Simulate transfer delay
	}
	f.Close()

	batch := waitBatch(t, w, 2*time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, testFile, batch[0].Path)
	assert.Equal(t, int64(len(largeContent)), batch[0].Size)
}

// TestIntegration_MultipleRapidChanges verifies rapid rewrites of one
// file debounce into a single batch with a single event.
func TestIntegration_MultipleRapidChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	opts := Options{
		SettleDelay: 100 * time.Millisecond,
	}

	w, err := New(testLogger(), opts)
	require.NoError(t, err)
	defer w.Stop()

	tmpDir := t.TempDir()
	require.NoError(t, w.Watch(tmpDir))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go w.Start(ctx)

	testFile := filepath.Join(tmpDir, "rapid.md")

	for i := 0; i < 10; i++ {
		err = os.WriteFile(testFile, []byte(fmt.Sprintf("content %d", i)), 0o644)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	batch := waitBatch(t, w, 2*time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, testFile, batch[0].Path)

	select {
	case extra := <-w.Events():
		t.Fatalf("unexpected second batch: %+v", extra)
	case <-time.After(500 * time.Millisecond):
	}
}

// TestIntegration_NewDirectoryDetection verifies directories created
// while watching are picked up automatically.
func TestIntegration_NewDirectoryDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	opts := Options{
		SettleDelay: 100 * time.Millisecond,
	}

	w, err := New(testLogger(), opts)
	require.NoError(t, err)
	defer w.Stop()

	tmpDir := t.TempDir()
	require.NoError(t, w.Watch(tmpDir))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go w.Start(ctx)

	// Create new subdirectory
	subDir := filepath.Join(tmpDir, "genesis")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	// Wait a bit for the directory watch to be added
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(subDir, "Ristar.md")
	require.NoError(t, os.WriteFile(testFile, []byte("content"), 0o644))

	batch := waitBatch(t, w, 2*time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, testFile, batch[0].Path)
}
