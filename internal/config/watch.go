package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/agbru/funnelcalc/internal/logging"
)

// Watch monitors path and calls onChange with the reloaded plan each time the
// file is written or recreated. It runs until ctx is cancelled.
//
// A reload that fails to parse is logged and skipped; onChange is not called.
func Watch(ctx context.Context, path string, logger logging.Logger, onChange func(PlanFile)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	logger.Info("watching plan file", logging.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors that save atomically emit Create rather than Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			plan, err := LoadPlan(path)
			if err != nil {
				logger.Error("plan reload failed, keeping previous values", err,
					logging.String("path", path))
				continue
			}

			logger.Debug("plan reloaded", logging.String("path", path))
			onChange(plan)

			// The inode may have changed after an atomic save.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("plan watcher error", err)
		}
	}
}
