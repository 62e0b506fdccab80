// Package store defines the persistence records for collection
// history: scan sessions, the ROM records they produced, duplicate
// groups, and matching runs. The SQLite implementation lives in the
// sqlite subpackage.
package store

import "time"

// ScanSession is one recorded pass over a collection root.
type ScanSession struct {
	ID         string
	Root       string
	Algorithm  string
	StartedAt  time.Time
	FinishedAt *time.Time
	TotalFiles int
	TotalBytes int64
	Skipped    int
	Errors     int
}

// ROM is one file record produced by a scan session.
type ROM struct {
	ID        string
	SessionID string
	Path      string
	Name      string
	Ext       string
	Size      int64
	Modified  time.Time
	Digest    string
	Algorithm string
}

// DuplicateGroup is a persisted set of byte-identical ROMs from one
// session. The original is the first file the scan encountered.
type DuplicateGroup struct {
	ID          string
	SessionID   string
	Digest      string
	WastedBytes int64
	Original    ROM
	Duplicates  []ROM
}

// MatchRun is one recorded genre-matching pass.
type MatchRun struct {
	ID          string
	SessionID   string
	CatalogPath string
	Workers     int
	StartedAt   time.Time
	FinishedAt  *time.Time
	TotalROMs   int
	Matched     int
	Unmatched   int
}

// MatchResult is one ROM's outcome within a match run.
type MatchResult struct {
	RunID       string
	Path        string
	RomName     string
	Matched     bool
	Genre       string
	FullGenre   string
	CatalogName string
}
