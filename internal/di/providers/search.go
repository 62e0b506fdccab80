package providers

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/logger"
	"github.com/romstackapp/romstack/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		IndexPath: cfg.Search.IndexPath,
		Logger:    log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("search index ready", "path", cfg.Search.IndexPath, "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}
