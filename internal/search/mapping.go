package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for rom documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on rom names with English stemming
//  2. Exact keyword matching for genre, region, and extension filters
//  3. Numeric range queries for release year and file size
//  4. Term vectors enabled on the name field for highlighting
func buildIndexMapping() mapping.IndexMapping {
	// Create the index mapping
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	// Create document mapping
	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Full genre path - searchable with simple analyzer so "Platformer"
	// matches without stemming surprises
	fullGenreFieldMapping := bleve.NewTextFieldMapping()
	fullGenreFieldMapping.Analyzer = simple.Name
	fullGenreFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("full_genre", fullGenreFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Path - exact, never tokenized
	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Analyzer = keyword.Name
	pathFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	// Extension - for filtering by format (".md", ".sfc", ...)
	extFieldMapping := bleve.NewTextFieldMapping()
	extFieldMapping.Analyzer = keyword.Name
	extFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("ext", extFieldMapping)

	// Genre - for exact genre filtering and faceting
	genreFieldMapping := bleve.NewTextFieldMapping()
	genreFieldMapping.Analyzer = keyword.Name
	genreFieldMapping.Store = true // Store for retrieval in search results
	docMapping.AddFieldMappingsAt("genre", genreFieldMapping)

	// Region - exact matching on the normalized tag ("USA", "Europe", ...)
	regionFieldMapping := bleve.NewTextFieldMapping()
	regionFieldMapping.Analyzer = keyword.Name
	regionFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("region", regionFieldMapping)

	// Digest - for exact lookups by content hash
	digestFieldMapping := bleve.NewTextFieldMapping()
	digestFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("digest", digestFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	// Release year - for range filtering
	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	// File size - for range filtering
	sizeFieldMapping := bleve.NewNumericFieldMapping()
	sizeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("size", sizeFieldMapping)

	// File mtime - for sorting by recency
	modifiedFieldMapping := bleve.NewNumericFieldMapping()
	modifiedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("modified", modifiedFieldMapping)

	// Register the document mapping
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
