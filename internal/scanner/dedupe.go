package scanner

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FindDuplicates groups files that share a content digest. Within a
// group the first file seen is the original and every later one is a
// duplicate, so scan order decides which copy survives a cleanup.
func FindDuplicates(files []File) []DuplicateGroup {
	byDigest := make(map[string][]File)
	var order []string

	for _, f := range files {
		if f.Digest == "" {
			continue
		}
		if _, seen := byDigest[f.Digest]; !seen {
			order = append(order, f.Digest)
		}
		byDigest[f.Digest] = append(byDigest[f.Digest], f)
	}

	var groups []DuplicateGroup
	for _, digest := range order {
		members := byDigest[digest]
		if len(members) < 2 {
			continue
		}
		var wasted int64
		for _, d := range members[1:] {
			wasted += d.Size
		}
		groups = append(groups, DuplicateGroup{
			ID:          uuid.NewString(),
			Digest:      digest,
			Original:    members[0],
			Duplicates:  members[1:],
			WastedBytes: wasted,
		})
	}
	return groups
}

// MoveDuplicates relocates every duplicate file into dir, leaving each
// group's original in place. Per-file failures are logged and skipped.
// Returns the number of files moved.
func (s *Scanner) MoveDuplicates(groups []DuplicateGroup, dir string) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, err
	}

	moved := 0
	for _, g := range groups {
		for _, d := range g.Duplicates {
			dst := filepath.Join(dir, d.Name)
			if _, err := os.Stat(dst); err == nil {
				s.logger.Warn("duplicate already in quarantine, skipping", "path", d.Path, "dest", dst)
				continue
			}
			if err := moveFile(d.Path, dst); err != nil {
				s.logger.Error("failed to move duplicate", "path", d.Path, "dest", dst, "error", err)
				continue
			}
			moved++
		}
	}
	s.logger.Info("duplicates moved", "count", moved, "dir", dir)
	return moved, nil
}

// moveFile renames src to dst, falling back to copy-and-remove when
// the rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) //#nosec G304 -- paths come from the collection walk
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //#nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
