package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Options configures the collection watcher.
type Options struct {
	// SettleDelay is how long a file must stay unchanged before its
	// event is reported. Copying a big rom over a slow link shows up as
	// a stream of writes; the delay keeps half-written files out.
	SettleDelay time.Duration

	// Extensions limits events to files with these suffixes (lowercase,
	// with dot). Empty watches every file.
	Extensions []string

	// IgnoreRoots are directory trees that never produce events. The
	// organize output directory belongs here, otherwise every copy pass
	// would trigger a rescan of its own output.
	IgnoreRoots []string

	// IgnorePatterns are glob patterns matched against base names.
	IgnorePatterns []string

	// IgnoreHidden skips dotfiles and dot-directories.
	IgnoreHidden bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}

	// Set default ignore patterns if none specified (nil, not just empty).
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"Thumbs.db",
			"*.tmp",
			"*.temp",
			"*.part",
			"*.crdownload",
		}
		// Also default to ignoring hidden files when no custom config
		// provided. Explicitly set patterns (even an empty slice) leave
		// the caller's IgnoreHidden choice alone.
		o.IgnoreHidden = true
	}
}

// shouldIgnore checks whether a path is excluded from watching.
func (o *Options) shouldIgnore(path string) bool {
	path = filepath.Clean(path)

	// Inside an ignored tree?
	for _, root := range o.IgnoreRoots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}

	// Hidden component?
	if o.IgnoreHidden {
		parts := strings.Split(path, string(filepath.Separator))
		for _, part := range parts {
			if strings.HasPrefix(part, ".") && part != "." && part != ".." {
				return true
			}
		}
	}

	// Pattern on the base name?
	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}

	return false
}

// wantsFile reports whether a file's extension is watched. Directories
// must not go through this check since they rarely carry rom extensions.
func (o *Options) wantsFile(path string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(o.Extensions, ext)
}
