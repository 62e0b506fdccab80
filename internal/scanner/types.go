package scanner

import (
	"time"
)

// File is a ROM file discovered and fingerprinted during a scan.
type File struct {
	Modified time.Time
	Name     string // filename including extension
	Path     string // absolute path
	RelPath  string // path relative to the scan root
	Ext      string // lowercased extension with leading dot
	Digest   string // hex content digest
	Size     int64
}

// DuplicateGroup collects files that share one content digest. The
// first file seen keeps Original; the rest are Duplicates.
type DuplicateGroup struct {
	Original    File
	ID          string
	Digest      string
	Duplicates  []File
	WastedBytes int64
}

// ScanResult represents the outcome of scanning a collection.
type ScanResult struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Root        string
	Algorithm   string
	Files       []File
	Duplicates  []DuplicateGroup
	Skipped     int // entries whose extension is not in the ROM set
	Errors      int
}

// Progress tracks scan progress.
type Progress struct {
	Phase       ScanPhase
	CurrentItem string
	Errors      []ScanError
	Current     int
	Total       int
}

// ScanPhase represents the current scan phase.
type ScanPhase string

// ScanPhase constants define the phases of a collection scan.
const (
	// PhaseWalking represents the file system walking phase.
	PhaseWalking ScanPhase = "walking"
	// PhaseHashing represents the content fingerprinting phase.
	PhaseHashing ScanPhase = "hashing"
	// PhaseDeduping represents the duplicate grouping phase.
	PhaseDeduping ScanPhase = "deduping"
	// PhaseComplete represents the completion phase.
	PhaseComplete ScanPhase = "complete"
)

// ScanError represents an error during scanning.
type ScanError struct {
	Time  time.Time
	Error error
	Path  string
	Phase ScanPhase
}
