// Package search provides full-text search over a scanned rom collection
// using Bleve. Rom names are matched with fuzzy and prefix queries for typo
// tolerance, with exact keyword filters for genre, region, and extension.
package search

import (
	"strconv"
	"strings"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/store"
	"github.com/romstackapp/romstack/internal/util"
)

// RomDocument is the document structure for the Bleve index.
//
// Design note: genre and region are denormalized into every rom document so
// a single query can rank and filter without touching the store. The index
// is refreshed from store rows after each scan and match run, so the
// duplication never drifts for long.
type RomDocument struct {
	// Identity
	ID string `json:"id"` // Rom row ID (rom-xxx)

	// Name is the file name without its extension, the primary search target.
	Name string `json:"name"`

	Path string `json:"path"` // Absolute path on disk
	Ext  string `json:"ext"`  // Lowercase extension including the dot

	// Match fields (empty until a match run has seen this rom)
	Genre     string `json:"genre,omitempty"`      // Primary genre, exact filtering
	FullGenre string `json:"full_genre,omitempty"` // Full genre path, e.g. "Action / Platformer"

	// Parsed from the file name tags
	Region string `json:"region,omitempty"`
	Year   int    `json:"year,omitempty"`

	Size   int64  `json:"size,omitempty"` // Bytes
	Digest string `json:"digest,omitempty"`

	// Modified is the file mtime in Unix millis, for sorting by recency.
	Modified int64 `json:"modified"`
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *RomDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":       d.ID,
		"name":     d.Name,
		"path":     d.Path,
		"ext":      d.Ext,
		"modified": d.Modified,
	}

	// Optional fields - only add if non-empty
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.FullGenre != "" {
		m["full_genre"] = d.FullGenre
	}
	if d.Region != "" {
		m["region"] = d.Region
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.Size > 0 {
		m["size"] = d.Size
	}
	if d.Digest != "" {
		m["digest"] = d.Digest
	}

	return m
}

// RomToDocument converts a stored rom row to a search document.
// Genre fields come from the latest match run and may be empty when the rom
// has not been matched yet; region and year are parsed from the name tags.
func RomToDocument(rom *store.ROM, genre, fullGenre string) *RomDocument {
	stem := util.Stem(rom.Name)
	doc := &RomDocument{
		ID:        rom.ID,
		Name:      stem,
		Path:      rom.Path,
		Ext:       strings.ToLower(rom.Ext),
		Genre:     genre,
		FullGenre: fullGenre,
		Region:    catalog.DetectRegion(stem),
		Size:      rom.Size,
		Digest:    rom.Digest,
		Modified:  rom.Modified.UnixMilli(),
	}

	// Release year from a "(1994)" style tag
	if year := catalog.DetectYear(stem); year != "" {
		if y, err := strconv.Atoi(year); err == nil {
			doc.Year = y
		}
	}

	return doc
}
