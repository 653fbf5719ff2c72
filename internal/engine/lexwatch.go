package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchLexicon watches a lexicon override file and hot-reloads the engine's
// lexicon on change, until ctx is cancelled. Edits are debounced because
// editors typically emit several write events per save. cb (if non-nil) is
// called after each successful reload.
func WatchLexicon(ctx context.Context, e *Engine, path string, logger *slog.Logger, cb func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the parent directory: atomic-save editors replace the file, which
	// drops a watch placed on the file itself.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("lexicon watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("lexicon watcher: stopped")
			return nil

		case <-reloadCh:
			overrides, loadErr := LoadOverrides(abs)
			if loadErr != nil {
				logger.Warn("lexicon watcher: reload failed", slog.String("error", loadErr.Error()))
				continue
			}
			lex, applyErr := DefaultLexicon().Apply(overrides)
			if applyErr != nil {
				logger.Warn("lexicon watcher: apply failed", slog.String("error", applyErr.Error()))
				continue
			}
			e.SetLexicon(lex)
			logger.Info("lexicon watcher: reloaded", slog.String("path", abs))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("lexicon watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
