package app

import (
	"context"
	"log/slog"
	"os"

	"classjs/internal/watcher"
)

// Watch builds once, then rebuilds whenever a Java source or library
// catalog under paths changes, until ctx is done.
func (a *App) Watch(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		paths = a.Config.SourcePaths
	}
	roots := uniqueScanRoots(paths)

	if _, err := a.Build(ctx, roots); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		slog.Error("initial build failed", "error", err)
	}

	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:            a.Config.Watch.Debounce,
		ExcludeDirs:         a.Config.Exclude.Dirs,
		ExcludeFiles:        a.Config.Exclude.Files,
		Extensions:          []string{".java", ".toml"},
		MaxBatchesPerSecond: a.Config.Watch.MaxRebuildsPerSecond,
	}, func(changed []string) {
		a.HandleChanges(ctx, roots, changed)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(roots); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", roots)

	<-ctx.Done()
	return nil
}

// HandleChanges drops the artifacts of deleted sources and rebuilds roots.
// Unchanged units are served from the build cache.
func (a *App) HandleChanges(ctx context.Context, roots, changed []string) {
	slog.Info("detected changes", "count", len(changed))
	for _, path := range changed {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.removeArtifacts(path)
		}
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := a.Build(ctx, roots); err != nil && ctx.Err() == nil {
		slog.Error("rebuild failed", "error", err)
	}
}

func (a *App) removeArtifacts(sourcePath string) {
	if a.cache == nil {
		return
	}
	entry, ok, err := a.cache.Lookup(sourcePath)
	if err != nil || !ok {
		return
	}
	for _, out := range entry.Outputs {
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove artifact", "path", out, "error", err)
		}
	}
	if err := a.cache.Forget(sourcePath); err != nil {
		slog.Warn("failed to forget cache entry", "path", sourcePath, "error", err)
	}
	slog.Debug("removed artifacts of deleted source", "path", sourcePath, "count", len(entry.Outputs))
}
