package search

import (
	"context"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/romstackapp/romstack/internal/errors"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Genres  []string // Filter by exact genre names ("Action", "Puzzle")
	Regions []string // Filter by normalized region tags ("USA", "Europe")
	Exts    []string // Filter by file extension (".md", ".sfc")
	MinYear int      // Minimum release year
	MaxYear int      // Maximum release year
	MinSize int64    // Minimum file size in bytes
	MaxSize int64    // Maximum file size in bytes

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "size", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool     // Include facet counts in results
	FacetFields   []string // Which fields to facet on
	Highlight     bool     // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"genre", "ext"},
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Path       string            `json:"path,omitempty"`
	Ext        string            `json:"ext,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	FullGenre  string            `json:"full_genre,omitempty"`
	Region     string            `json:"region,omitempty"`
	Year       int               `json:"year,omitempty"`
	Size       int64             `json:"size,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Genres     []FacetCount `json:"genres,omitempty"`
	Extensions []FacetCount `json:"extensions,omitempty"`
	Regions    []FacetCount `json:"regions,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Build the query
	searchQuery := buildSearchQuery(params)

	// Create search request
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	// Add sorting
	addSorting(searchRequest, params)

	// Add facets
	if params.IncludeFacets {
		addFacets(searchRequest, params)
	}

	// Add highlighting
	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("full_genre")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"name", "path", "ext", "genre", "full_genre", "region", "year", "size",
	}

	// Execute search
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSearch, "execute search")
	}

	// Convert results
	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if p, ok := hit.Fields["path"].(string); ok {
			searchHit.Path = p
		}
		if e, ok := hit.Fields["ext"].(string); ok {
			searchHit.Ext = e
		}
		if g, ok := hit.Fields["genre"].(string); ok {
			searchHit.Genre = g
		}
		if fg, ok := hit.Fields["full_genre"].(string); ok {
			searchHit.FullGenre = fg
		}
		if r, ok := hit.Fields["region"].(string); ok {
			searchHit.Region = r
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			searchHit.Year = int(y)
		}
		if sz, ok := hit.Fields["size"].(float64); ok {
			searchHit.Size = int64(sz)
		}

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	// Extract facets
	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query
	// Search strategy:
	// - Exact-ish match on the rom name with the highest boost
	// - Genre path text match so "platformer" finds Action / Platformer roms
	// - Fuzzy match on the name for typo tolerance
	// - Prefix match on the name for partial input
	if params.Query != "" {
		textQueries := []query.Query{}

		// Name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Genre path match (lower boost than the name)
		genreMatch := bleve.NewMatchQuery(params.Query)
		genreMatch.SetField("full_genre")
		genreMatch.SetBoost(1.5)
		textQueries = append(textQueries, genreMatch)

		// Add fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for partial names (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any strategy)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Genre filter (exact match, OR across genres)
	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, genre := range params.Genres {
			gq := bleve.NewTermQuery(genre)
			gq.SetField("genre")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	// Region filter (exact match, OR across regions)
	if len(params.Regions) > 0 {
		regionQueries := make([]query.Query, len(params.Regions))
		for i, region := range params.Regions {
			rq := bleve.NewTermQuery(region)
			rq.SetField("region")
			regionQueries[i] = rq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(regionQueries...))
	}

	// Extension filter. Documents index extensions lowercased, so the
	// filter side lowercases too.
	if len(params.Exts) > 0 {
		extQueries := make([]query.Query, len(params.Exts))
		for i, ext := range params.Exts {
			eq := bleve.NewTermQuery(strings.ToLower(ext))
			eq.SetField("ext")
			extQueries[i] = eq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(extQueries...))
	}

	// Year range filter
	if params.MinYear > 0 || params.MaxYear > 0 {
		min := float64(params.MinYear)
		max := float64(params.MaxYear)
		if params.MaxYear == 0 {
			max = 3000 // Far future
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("year")
		queries = append(queries, rangeQuery)
	}

	// Size range filter
	if params.MinSize > 0 || params.MaxSize > 0 {
		min := float64(params.MinSize)
		max := float64(params.MaxSize)
		if params.MaxSize == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("size")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "size":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"size"})
		} else {
			req.SortBy([]string{"-size"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"modified"})
		} else {
			req.SortBy([]string{"-modified"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// addFacets configures facet requests.
func addFacets(req *bleve.SearchRequest, params SearchParams) {
	for _, field := range params.FacetFields {
		facetReq := bleve.NewFacetRequest(field, 20) // Top 20 values
		req.AddFacet(field, facetReq)
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if genreFacet, ok := result.Facets["genre"]; ok {
		for _, term := range genreFacet.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if extFacet, ok := result.Facets["ext"]; ok {
		for _, term := range extFacet.Terms.Terms() {
			facets.Extensions = append(facets.Extensions, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if regionFacet, ok := result.Facets["region"]; ok {
		for _, term := range regionFacet.Terms.Terms() {
			facets.Regions = append(facets.Regions, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
