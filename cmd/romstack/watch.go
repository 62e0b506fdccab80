package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/di/providers"
)

// runWatch keeps the genre folders in sync with the collection. Every
// time changes settle it reruns the full organize pass; copies are
// skipped when the destination already exists, so a rerun over an
// unchanged collection is cheap.
func runWatch(ctx context.Context, a *app) error {
	root, err := a.collectionRoot()
	if err != nil {
		return err
	}
	if _, err := a.resolveCatalog(); err != nil {
		return err
	}
	workers := a.resolveWorkers()

	// Load the catalog up front so a broken gamelist aborts startup
	// instead of the first rescan.
	if _, err := do.Invoke[*catalog.Index](a.injector); err != nil {
		return err
	}

	w, err := do.Invoke[*providers.WatcherHandle](a.injector)
	if err != nil {
		return err
	}

	go func() {
		if err := w.Start(ctx); err != nil {
			a.log.WithError(err).Error("watcher stopped")
		}
	}()

	fmt.Printf("Watching %s (settle %s). Press Ctrl-C to stop.\n", root, a.cfg.Watch.SettleDelay)

	// One pass up front so the output reflects the collection as it
	// stands before changes stream in.
	if err := runGenrePass(ctx, a, genrePass{workers: workers}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.log.Info("changes settled, reorganizing",
				"events", len(batch), "files", len(batch.Paths()))
			for _, e := range batch {
				a.log.Debug("change", "type", e.Type.String(), "path", e.Path)
			}
			if err := runGenrePass(ctx, a, genrePass{workers: workers}); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.log.WithError(err).Error("reorganize failed")
			}
		case werr, ok := <-w.Errors():
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "error", werr)
		}
	}
}
