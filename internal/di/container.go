// Package di provides dependency injection configuration for the romstack CLI.
package di

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/di/providers"
	"github.com/romstackapp/romstack/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
// Config and logger are parsed by the subcommand before the container
// exists, so they enter as values. Everything else is lazy: a provider
// only runs when the running subcommand invokes it, so scan never loads
// a catalog and search never opens the collection database.
func NewContainer(cfg *config.Config, log *logger.Logger) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)

	// Collection database
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Matching pipeline
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideScheduler)

	// Scanner
	do.Provide(injector, providers.ProvideScanner)

	// Organizers and reports
	do.Provide(injector, providers.ProvideGenreOrganizer)
	do.Provide(injector, providers.ProvideAlphabeticalOrganizer)
	do.Provide(injector, providers.ProvideRenamer)
	do.Provide(injector, providers.ProvideReportWriter)

	// Watch mode
	do.Provide(injector, providers.ProvideWatcher)

	return injector
}

// Shutdown releases every service the subcommand actually constructed,
// in reverse order. Services that were never invoked are not created
// just to be torn down.
func Shutdown(injector *do.RootScope, log *logger.Logger) {
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
