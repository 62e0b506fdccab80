package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/di/providers"
	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/search"
)

// runSearch queries the bleve index built by the scan and organize
// commands.
func runSearch(ctx context.Context, a *app) error {
	query := strings.TrimSpace(strings.Join(a.args, " "))
	if query == "" {
		return errors.Validation("search needs a query, e.g. 'romstack search sonic'")
	}

	idx, err := do.Invoke[*providers.SearchIndexHandle](a.injector)
	if err != nil {
		return err
	}

	if n, _ := idx.DocumentCount(); n == 0 {
		fmt.Println("The search index is empty. Run 'romstack scan' first.")
		return nil
	}

	params := search.DefaultSearchParams()
	params.Query = query

	result, err := idx.Search(ctx, params)
	if err != nil {
		return err
	}

	if result.Total == 0 {
		fmt.Printf("No ROMs match %q.\n", query)
		return nil
	}

	fmt.Printf("Found %d ROMs (%dms)\n\n", result.Total, result.TookMs)
	for i, hit := range result.Hits {
		fmt.Printf("%2d. %s", i+1, hit.Name)
		if hit.Genre != "" {
			fmt.Printf("  [%s]", hit.Genre)
		}
		var tags []string
		if hit.Region != "" {
			tags = append(tags, hit.Region)
		}
		if hit.Year > 0 {
			tags = append(tags, strconv.Itoa(hit.Year))
		}
		if len(tags) > 0 {
			fmt.Printf("  (%s)", strings.Join(tags, ", "))
		}
		fmt.Println()
		fmt.Printf("    %s\n", hit.Path)
	}
	if len(result.Hits) < int(result.Total) {
		fmt.Printf("... and %d more\n", int(result.Total)-len(result.Hits))
	}

	if len(result.Facets.Genres) > 0 {
		fmt.Printf("\nGenres:  %s\n", facetLine(result.Facets.Genres))
	}
	if len(result.Facets.Extensions) > 0 {
		fmt.Printf("Formats: %s\n", facetLine(result.Facets.Extensions))
	}
	return nil
}

func facetLine(counts []search.FacetCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s (%d)", c.Value, c.Count))
	}
	return strings.Join(parts, ", ")
}
