package providers

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/logger"
	"github.com/romstackapp/romstack/internal/scanner"
)

// ProvideScanner provides the collection scanner. The output directory
// is excluded from walks so an organize run never rescans its own
// copies.
func ProvideScanner(i do.Injector) (*scanner.Scanner, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return scanner.New(log.Logger, cfg.Library.Extensions, cfg.Dedup.Algorithm, cfg.Output.Dir), nil
}
