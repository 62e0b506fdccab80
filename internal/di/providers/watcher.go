package providers

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/logger"
	"github.com/romstackapp/romstack/internal/watcher"
)

// WatcherHandle wraps the library watcher with shutdown capability.
type WatcherHandle struct {
	*watcher.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	return h.Stop()
}

// ProvideWatcher provides the library watcher registered on the
// collection root. The watch subcommand owns the event loop; the
// provider only builds and registers the watcher so teardown runs
// with everything else.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	w, err := watcher.New(log.Logger, watcher.Options{
		SettleDelay: cfg.Watch.SettleDelay,
		Extensions:  cfg.Library.Extensions,
		IgnoreRoots: []string{cfg.Output.Dir},
	})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(cfg.Library.Root); err != nil {
		return nil, err
	}

	log.Info("watching collection root",
		"path", cfg.Library.Root,
		"settle", cfg.Watch.SettleDelay,
	)

	return &WatcherHandle{Watcher: w}, nil
}
