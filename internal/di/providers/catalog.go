// Package providers contains dependency injection providers for the romstack CLI.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/logger"
	"github.com/romstackapp/romstack/internal/match"
)

// ProvideCatalog provides the genre catalog index. The subcommand
// resolves the catalog path before the first invoke, either from the
// -catalog flag or by picking a gamelist out of the catalog directory,
// so an empty path here means no gamelist exists at all.
func ProvideCatalog(i do.Injector) (*catalog.Index, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Library.CatalogPath == "" {
		return nil, errors.Validation("no catalog file configured")
	}

	index, err := catalog.Load(cfg.Library.CatalogPath)
	if err != nil {
		return nil, err
	}

	log.Info("catalog loaded",
		"path", cfg.Library.CatalogPath,
		"games", index.GameCount(),
		"variants", index.Len(),
	)

	return index, nil
}

// ProvideScheduler provides the batch matching scheduler.
func ProvideScheduler(i do.Injector) (*match.Scheduler, error) {
	index := do.MustInvoke[*catalog.Index](i)
	log := do.MustInvoke[*logger.Logger](i)

	return match.NewScheduler(index, log.Logger), nil
}
