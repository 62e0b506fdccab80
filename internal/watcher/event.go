package watcher

import "time"

// EventType represents the type of file system event
type EventType int

const (
	// EventAdded is emitted when a new file is detected (after settling)
	EventAdded EventType = iota
	// EventModified is emitted when a previously seen file changes (after settling)
	EventModified
	// EventRemoved is emitted when a file is deleted or moved away
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a settled file system change.
type Event struct {
	// Type is the kind of event (added, modified, removed)
	Type EventType

	// Path is the file path
	Path string

	// Size is the file size in bytes (zero for removals)
	Size int64

	// ModTime is the file's last modification time (zero for removals)
	ModTime time.Time
}

// Batch groups the events that settled within one quiet window. A burst
// of copies lands as a single batch so watch mode runs one rescan for it
// instead of one per file.
type Batch []Event

// Paths returns the distinct paths in the batch, in arrival order.
func (b Batch) Paths() []string {
	seen := make(map[string]struct{}, len(b))
	paths := make([]string, 0, len(b))
	for _, e := range b {
		if _, ok := seen[e.Path]; ok {
			continue
		}
		seen[e.Path] = struct{}{}
		paths = append(paths, e.Path)
	}
	return paths
}
