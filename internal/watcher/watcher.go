// # internal/watcher/watcher.go
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"classjs/internal/shared/observability"
	"classjs/internal/shared/util"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

type Options struct {
	Debounce     time.Duration
	ExcludeDirs  []string // glob patterns matched against directory base names
	ExcludeFiles []string // glob patterns matched against file base names
	// Extensions restricts reported files; empty reports every file.
	Extensions []string
	// MaxBatchesPerSecond bounds how often onChange runs; 0 disables the limit.
	MaxBatchesPerSecond float64
}

type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extensions   map[string]bool
	limiter      *util.Limiter
	onChange     func([]string)
	callbackMu   sync.Mutex

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool
}

func NewWatcher(opts Options, onChange func([]string)) (*Watcher, error) {
	w := &Watcher{
		debounce: opts.Debounce,
		onChange: onChange,
		pending:  make(map[string]time.Time),
	}

	for _, pattern := range opts.ExcludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		w.excludeDirs = append(w.excludeDirs, g)
	}

	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		w.excludeFiles = append(w.excludeFiles, g)
	}

	if len(opts.Extensions) > 0 {
		w.extensions = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			w.extensions[strings.ToLower(ext)] = true
		}
	}
	if opts.MaxBatchesPerSecond > 0 {
		w.limiter = util.NewLimiter(opts.MaxBatchesPerSecond, 1)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsWatcher = fsw
	return w, nil
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && w.ShouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}

		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.ShouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.ShouldExcludeFile(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()
	w.resetTimerLocked(w.debounce)
}

func (w *Watcher) resetTimerLocked(d time.Duration) {
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(d, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	if w.limiter != nil && !w.limiter.Allow(1) {
		// Keep the batch until the limiter has a token again.
		observability.RebuildsThrottledTotal.Inc()
		w.resetTimerLocked(max(w.debounce, w.limiter.Delay()))
		w.pendingMu.Unlock()
		return
	}
	paths := util.SortedStringKeys(w.pending)
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// ShouldExcludeDir reports whether a directory is skipped by the exclude
// patterns.
func (w *Watcher) ShouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// ShouldExcludeFile reports whether a file is outside the watched
// extensions or matches an exclude pattern.
func (w *Watcher) ShouldExcludeFile(path string) bool {
	base := filepath.Base(path)

	if w.extensions != nil && !w.extensions[strings.ToLower(filepath.Ext(base))] {
		return true
	}

	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if info.IsDir() {
			if path != root && w.ShouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ShouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
