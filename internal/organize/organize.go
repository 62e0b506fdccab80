// Package organize lays a scanned collection out on disk: one folder
// per genre, one folder per leading letter, or in-place renames to a
// naming convention. Copy passes are sequential and idempotent, so an
// interrupted run can simply be started again.
package organize

import (
	"io"
	"os"
)

// copyProgressInterval is how many files pass between progress
// callbacks during a copy pass.
const copyProgressInterval = 200

// UnknownGenre collects ROMs whose genre is missing or sanitizes to
// nothing.
const UnknownGenre = "Unknown"

// copyFile copies src to dst, carrying over the source's permissions
// and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src) //#nosec G304 -- paths come from the collection walk
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) //#nosec G304
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
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
