package providers

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/logger"
	"github.com/romstackapp/romstack/internal/store/sqlite"
)

// StoreHandle wraps the collection store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the collection database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Store.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("collection database ready", "path", cfg.Store.DatabasePath)

	return &StoreHandle{Store: db}, nil
}
