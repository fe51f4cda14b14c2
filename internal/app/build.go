package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"classjs/internal/catalog"
	"classjs/internal/config"
	"classjs/internal/core/errors"
	"classjs/internal/data/buildcache"
	"classjs/internal/generator"
	"classjs/internal/parser"
	"classjs/internal/scope"
	"classjs/internal/shared/observability"
	"classjs/internal/shared/util"
	"classjs/internal/sourcemap"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UnitResult is the outcome of one compilation unit in a build.
type UnitResult struct {
	Source  string
	Class   string
	Outputs []string
	Skipped bool
	Err     error
}

type Report struct {
	RunID     string
	Units     []UnitResult
	Generated int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Failures returns the units that produced no output.
func (r *Report) Failures() []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Err != nil {
			out = append(out, u)
		}
	}
	return out
}

type parsedUnit struct {
	path string
	hash string
	unit *parser.Unit
	err  error
}

// Build translates every Java source under paths (the configured source
// paths when empty). Per-unit failures are reported in the Report; the
// returned error is reserved for failures that stop the whole build, such
// as an unreadable library catalog, an inheritance cycle or cancellation.
func (a *App) Build(ctx context.Context, paths []string) (*Report, error) {
	a.buildMu.Lock()
	defer a.buildMu.Unlock()

	if len(paths) == 0 {
		paths = a.Config.SourcePaths
	}
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := observability.Tracer.Start(ctx, "app.Build", trace.WithAttributes(
		attribute.String("run_id", runID),
	))
	defer span.End()

	files, err := a.ScanSources(paths)
	if err != nil {
		span.RecordError(err)
		return nil, errors.AddContext(err, errors.CtxOperation, "scan_sources")
	}
	slog.Debug("sources scanned", "run_id", runID, "count", len(files))

	units := make([]parsedUnit, len(files))
	if err := runParallel(ctx, a.Config.Generator.Workers, len(files), func(i int) {
		units[i] = a.parseUnit(files[i])
	}); err != nil {
		return nil, err
	}

	cat, err := a.buildCatalog(units)
	if err != nil {
		span.RecordError(err)
		return nil, errors.AddContext(err, errors.CtxOperation, "build_catalog")
	}
	fingerprint := a.fingerprint(cat)

	results := make([]UnitResult, len(units))
	if err := runParallel(ctx, a.Config.Generator.Workers, len(units), func(i int) {
		results[i] = a.generateUnit(ctx, runID, fingerprint, cat, units[i])
	}); err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, Units: results}
	for _, r := range results {
		switch {
		case r.Err != nil:
			report.Failed++
		case r.Skipped:
			report.Skipped++
		default:
			report.Generated++
		}
	}
	report.Duration = time.Since(start)
	observability.BuildDuration.Observe(report.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("units.generated", report.Generated),
		attribute.Int("units.skipped", report.Skipped),
		attribute.Int("units.failed", report.Failed),
	)

	if a.cache != nil {
		if err := a.cache.RecordBuild(buildcache.Build{
			RunID:      runID,
			StartedAt:  start,
			FinishedAt: start.Add(report.Duration),
			Generated:  report.Generated,
			Skipped:    report.Skipped,
			Failed:     report.Failed,
		}); err != nil {
			slog.Warn("failed to record build", "run_id", runID, "error", err)
		}
	}

	slog.Info("build finished",
		"run_id", runID,
		"generated", report.Generated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration,
		"heap_mb", util.HeapAllocMB(),
	)
	a.emitReport(report)
	return report, nil
}

func (a *App) parseUnit(path string) parsedUnit {
	pu := parsedUnit{path: path}
	content, err := os.ReadFile(path)
	if err != nil {
		pu.err = errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source"), errors.CtxPath, path)
		return pu
	}
	pu.hash = buildcache.HashContent(content)
	pu.unit, pu.err = a.Parser.ParseFile(path, content)
	return pu
}

// buildCatalog snapshots library and source descriptors. A unit declaring a
// class that is already known fails on its own.
func (a *App) buildCatalog(units []parsedUnit) (*catalog.Catalog, error) {
	b := catalog.NewBuilder()
	lib, err := catalog.LoadLibraryFiles(a.Config.LibraryCatalogs)
	if err != nil {
		return nil, err
	}
	for _, d := range lib {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	for i := range units {
		u := &units[i]
		if u.err != nil {
			continue
		}
		for _, d := range u.unit.Classes {
			if err := b.Add(d); err != nil {
				u.err = errors.AddContext(err, errors.CtxPath, u.path)
				break
			}
		}
	}
	for _, q := range a.Config.Generator.GlobalTypes {
		b.MarkGlobal(q)
	}

	cat, err := b.Build()
	if err != nil {
		return nil, err
	}
	observability.CatalogClasses.Set(float64(cat.Len()))
	return cat, nil
}

// fingerprint identifies everything besides a unit's own text that its
// output depends on.
func (a *App) fingerprint(cat *catalog.Catalog) string {
	g := a.Config.Generator
	return buildcache.HashContent([]byte(fmt.Sprintf("%s|%s|%s|%t|%t|%t|%t",
		cat.Fingerprint(),
		a.Config.OutputDir,
		g.RuntimeNamespace,
		g.DisableMainCall,
		config.Enabled(g.SourceMaps),
		config.Enabled(g.Metadata),
		config.Enabled(g.VerifyOutput),
	)))
}

func (a *App) generateUnit(ctx context.Context, runID, fingerprint string, cat *catalog.Catalog, pu parsedUnit) UnitResult {
	res := UnitResult{Source: pu.path}

	_, span := observability.Tracer.Start(ctx, "app.generateUnit", trace.WithAttributes(
		attribute.String("path", pu.path),
	))
	defer span.End()

	fail := func(err error) UnitResult {
		span.RecordError(err)
		observability.UnitsFailedTotal.WithLabelValues(string(errors.CodeOf(err))).Inc()
		slog.Warn("unit failed", "run_id", runID, "path", pu.path, "error", err)
		if a.cache != nil {
			if ferr := a.cache.Forget(pu.path); ferr != nil {
				slog.Warn("failed to forget cache entry", "path", pu.path, "error", ferr)
			}
		}
		res.Err = err
		return res
	}

	if pu.err != nil {
		return fail(pu.err)
	}
	res.Class = pu.unit.Primary()

	if a.cache != nil {
		entry, ok, err := a.cache.Lookup(pu.path)
		if err != nil {
			slog.Warn("build cache lookup failed", "path", pu.path, "error", err)
		} else if ok && entry.Fresh(pu.hash, fingerprint) && outputsExist(entry.Outputs) {
			observability.UnitsSkippedTotal.Inc()
			slog.Debug("unit unchanged", "path", pu.path)
			res.Skipped = true
			res.Outputs = entry.Outputs
			return res
		}
	}

	start := time.Now()
	root, err := scope.Build(pu.unit.Tree, cat, pu.unit.Types)
	if err != nil {
		return fail(err)
	}
	out, err := a.Generator.Generate(pu.unit.Tree, root)
	if err != nil {
		return fail(err)
	}
	observability.GenerationDuration.Observe(time.Since(start).Seconds())

	outputs, err := a.writeArtifacts(pu, out)
	if err != nil {
		return fail(err)
	}
	res.Outputs = outputs

	if a.cache != nil {
		if err := a.cache.Record(buildcache.Entry{
			SourcePath:  pu.path,
			SourceHash:  pu.hash,
			Fingerprint: fingerprint,
			ClassName:   res.Class,
			Outputs:     outputs,
			RunID:       runID,
		}); err != nil {
			slog.Warn("failed to record cache entry", "path", pu.path, "error", err)
		}
	}

	observability.UnitsGeneratedTotal.Inc()
	slog.Debug("unit generated", "path", pu.path, "unit", res.Class, "duration", time.Since(start))
	return res
}

// writeArtifacts renders every artifact first and writes only when all of
// them are valid, so a failing unit leaves nothing behind.
func (a *App) writeArtifacts(pu parsedUnit, out *generator.Result) ([]string, error) {
	base, rel := a.artifactPaths(pu.path, pu.unit.Package)
	stem := filepath.Base(base)
	dir := strings.TrimSuffix(rel, stem)

	type artifact struct {
		path string
		data []byte
	}
	artifacts := []artifact{{path: base + ".js", data: out.Source}}

	if config.Enabled(a.Config.Generator.VerifyOutput) {
		if err := a.Parser.VerifyJavaScript(base+".js", out.Source); err != nil {
			return nil, err
		}
	}

	if config.Enabled(a.Config.Generator.SourceMaps) && len(out.Marks) > 0 {
		data, err := sourcemap.EncodeLineMap(stem+".js", filepath.Base(pu.path), out.Marks)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, pu.path)
		}
		artifacts = append(artifacts, artifact{path: base + ".map", data: data})
	}

	if config.Enabled(a.Config.Generator.Metadata) {
		var buf bytes.Buffer
		if err := sourcemap.WriteMetadata(&buf, sourcemap.Metadata{
			Class:  pu.unit.Primary(),
			Source: dir + filepath.Base(pu.path),
			JS:     rel + ".js",
		}); err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "render metadata"), errors.CtxPath, pu.path)
		}
		artifacts = append(artifacts, artifact{path: base + ".stjs", data: buf.Bytes()})
	}

	outputs := make([]string, 0, len(artifacts))
	for _, art := range artifacts {
		if err := util.WriteFileWithDirs(art.path, art.data, 0o644); err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write artifact"), errors.CtxPath, art.path)
		}
		outputs = append(outputs, art.path)
	}
	return outputs, nil
}

func outputsExist(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// runParallel calls fn for every index in [0, n) on up to workers
// goroutines. Indices not yet started when ctx is cancelled are skipped.
func runParallel(ctx context.Context, workers, n int, fn func(i int)) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return err
}
