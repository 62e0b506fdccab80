package scanner

import (
	"context"
	"crypto/md5"  //#nosec G501 -- md5 identifies duplicate content, not security material
	"crypto/sha1" //#nosec G505 -- sha1 identifies duplicate content, not security material
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/romstackapp/romstack/internal/errors"
)

// hashChunkSize is the read size used when streaming file contents
// through the digest.
const hashChunkSize = 8192

// Supported digest algorithms.
const (
	AlgoSHA1    = "sha1"
	AlgoMD5     = "md5"
	AlgoSHA256  = "sha256"
	AlgoBLAKE2b = "blake2b"
)

// Hasher computes content digests for discovered files.
type Hasher struct {
	logger    *slog.Logger
	algorithm string
}

// NewHasher creates a hasher for the named algorithm. An empty
// algorithm selects sha1.
func NewHasher(logger *slog.Logger, algorithm string) *Hasher {
	if logger == nil {
		logger = slog.Default()
	}
	if algorithm == "" {
		algorithm = AlgoSHA1
	}
	return &Hasher{
		logger:    logger,
		algorithm: strings.ToLower(algorithm),
	}
}

// Algorithm returns the digest algorithm this hasher applies.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// newDigest returns a fresh hash state for the configured algorithm.
func (h *Hasher) newDigest() (hash.Hash, error) {
	switch h.algorithm {
	case AlgoSHA1:
		return sha1.New(), nil //#nosec G401
	case AlgoMD5:
		return md5.New(), nil //#nosec G401
	case AlgoSHA256:
		return sha256.New(), nil
	case AlgoBLAKE2b:
		return blake2b.New256(nil)
	default:
		return nil, errors.Scanf("unsupported hash algorithm %q", h.algorithm)
	}
}

// HashOptions configures hashing behavior.
type HashOptions struct {
	// OnFile is invoked after each file finishes, on the calling
	// goroutine.
	OnFile func(path string)

	// Workers is the number of concurrent hash workers.
	Workers int
}

// Hash fingerprints every walked file concurrently. Files that cannot
// be read are dropped from the result and reported in the returned
// error list; only context cancellation aborts the whole pass.
func (h *Hasher) Hash(ctx context.Context, files []WalkResult, opts HashOptions) ([]File, []ScanError, error) {
	if len(files) == 0 {
		return []File{}, nil, nil
	}

	// Fail fast on a misconfigured algorithm before spawning workers.
	if _, err := h.newDigest(); err != nil {
		return nil, nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type job struct {
		file  WalkResult
		index int
	}

	type result struct {
		file  File
		err   error
		index int
	}

	jobs := make(chan job, len(files))
	results := make(chan result, len(files))

	// Start workers.
	for range workers {
		go func() {
			for j := range jobs {
				select {
				case <-ctx.Done():
					results <- result{index: j.index, err: ctx.Err()}
					return
				default:
				}

				file, err := h.hashFile(j.file)
				results <- result{file: file, index: j.index, err: err}
			}
		}()
	}

	// Send jobs.
	for i, file := range files {
		select {
		case jobs <- job{file: file, index: i}:
		case <-ctx.Done():
			close(jobs)
			return nil, nil, ctx.Err()
		}
	}
	close(jobs)

	// Collect results, keeping the original walk order.
	hashed := make([]*File, len(files))
	var scanErrors []ScanError

	for range len(files) {
		select {
		case r := <-results:
			if r.err != nil {
				if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
					return nil, nil, r.err
				}
				h.logger.Error("failed to hash file", "path", files[r.index].Path, "error", r.err)
				scanErrors = append(scanErrors, ScanError{
					Path:  files[r.index].Path,
					Phase: PhaseHashing,
					Error: r.err,
					Time:  time.Now(),
				})
				continue
			}
			hashed[r.index] = &r.file
			if opts.OnFile != nil {
				opts.OnFile(r.file.Path)
			}
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	out := make([]File, 0, len(files))
	for _, f := range hashed {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out, scanErrors, nil
}

// hashFile streams one file through the digest and builds its record.
func (h *Hasher) hashFile(wr WalkResult) (File, error) {
	digest, err := h.newDigest()
	if err != nil {
		return File{}, err
	}

	f, err := os.Open(wr.Path) //#nosec G304 -- paths come from the collection walk
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	// Stream in fixed-size chunks so multi-gigabyte disc images never
	// load into memory at once.
	buf := make([]byte, hashChunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return File{}, readErr
		}
	}

	return File{
		Name:     filepath.Base(wr.Path),
		Path:     wr.Path,
		RelPath:  wr.RelPath,
		Ext:      strings.ToLower(filepath.Ext(wr.Path)),
		Size:     wr.Size,
		Modified: wr.ModTime,
		Digest:   hex.EncodeToString(digest.Sum(nil)),
	}, nil
}
