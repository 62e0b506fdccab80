// Package util provides common utility functions.
package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Characters Windows refuses in path components.
	illegalPathChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Anything outside letters, digits, whitespace, dash, underscore, dot.
	unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.]`)
)

// SanitizeName strips characters that are unsafe in file and folder
// names. The result may be empty; callers supply their own fallback.
func SanitizeName(name string) string {
	name = illegalPathChars.ReplaceAllString(name, "")
	name = unsafeNameChars.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// TrimName shortens a filename to maxLen characters, keeping the
// extension intact. maxLen <= 0 disables trimming.
func TrimName(name string, maxLen int) string {
	if maxLen <= 0 || len(name) <= maxLen {
		return strings.TrimSpace(name)
	}

	base := name
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base = name[:i]
		ext = name[i:]
	}

	available := maxLen - len(ext)
	if available < 0 {
		available = 0
	}
	if len(base) > available {
		base = base[:available]
	}
	return strings.TrimSpace(base + ext)
}

// Stem returns the filename without its directory or final extension,
// so "roms/Sonic the Hedgehog 2.md" becomes "Sonic the Hedgehog 2".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
