package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"classjs/internal/config"
	"classjs/internal/data/buildcache"
	"classjs/internal/generator"
	"classjs/internal/parser"

	"github.com/gobwas/glob"
)

// App ties the front end, generator and artifact writers to one
// configuration. Builds are serialized; units inside a build run in
// parallel.
type App struct {
	Config    *config.Config
	Parser    *parser.Parser
	Generator *generator.Generator

	cache        *buildcache.Store
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	buildMu sync.Mutex

	reportMu sync.RWMutex
	onReport func(*Report)
}

func New(cfg *config.Config) (*App, error) {
	loader, err := parser.NewGrammarLoader(parser.LangJava, parser.LangJavaScript)
	if err != nil {
		return nil, err
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Parser: parser.NewParser(loader),
		Generator: generator.New(generator.Options{
			RuntimeNamespace: cfg.Generator.RuntimeNamespace,
			DisableMainCall:  cfg.Generator.DisableMainCall,
		}),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}

	if config.Enabled(cfg.Cache.Enabled) {
		store, err := buildcache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		a.cache = store
		slog.Debug("build cache opened", "path", store.Path())
	}
	return a, nil
}

func (a *App) Close() error {
	if a == nil || a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

// Cache returns the build cache, or nil when caching is disabled.
func (a *App) Cache() *buildcache.Store {
	return a.cache
}

// SetReportHandler registers a callback invoked after every build.
func (a *App) SetReportHandler(handler func(*Report)) {
	a.reportMu.Lock()
	defer a.reportMu.Unlock()
	a.onReport = handler
}

func (a *App) emitReport(report *Report) {
	a.reportMu.RLock()
	handler := a.onReport
	a.reportMu.RUnlock()
	if handler != nil {
		handler(report)
	}
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

// ScanSources walks the given roots and returns every Java source not
// excluded by the configured globs, sorted and deduplicated. A root that is
// itself a file is returned as is.
func (a *App) ScanSources(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range uniqueScanRoots(paths) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path == root {
					return nil
				}
				for _, g := range a.excludeDirs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Parser.IsSupportedPath(path) {
				return nil
			}
			for _, g := range a.excludeFiles {
				if g.Match(base) {
					return nil
				}
			}

			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// artifactPaths returns the output base (without extension) of a unit and
// the same base relative to the output directory in slash form.
func (a *App) artifactPaths(sourcePath, pkg string) (string, string) {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	rel := stem
	if pkg != "" {
		rel = strings.ReplaceAll(pkg, ".", "/") + "/" + stem
	}
	return filepath.Join(a.Config.OutputDir, filepath.FromSlash(rel)), rel
}
