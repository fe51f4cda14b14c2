package app

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"classjs/internal/config"
	"classjs/internal/core/errors"
	"classjs/internal/sourcemap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseSource = `package org.app;

public class Base {
    public int total() {
        return 1;
    }
}
`

const shopSource = `package org.app;

public class Shop extends Base {
    public int buy(int n) {
        int x = n + total();
        return x;
    }
}
`

type fixture struct {
	app *App
	src string
	out string
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	for name, content := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := config.Default()
	cfg.SourcePaths = []string{src}
	cfg.OutputDir = filepath.Join(tmp, "out")
	cfg.Cache.Path = filepath.Join(tmp, "cache", "build.db")
	cfg.Trace.Root = cfg.OutputDir
	cfg.Generator.Workers = 2

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return fixture{app: a, src: src, out: cfg.OutputDir}
}

func defaultFixture(t *testing.T) fixture {
	return newFixture(t, map[string]string{
		"org/app/Base.java": baseSource,
		"org/app/Shop.java": shopSource,
	})
}

func TestBuildWritesArtifacts(t *testing.T) {
	f := defaultFixture(t)

	report, err := f.app.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, report.Failures())
	assert.Equal(t, 2, report.Generated)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Units, 2)
	assert.Equal(t, "org.app.Base", report.Units[0].Class)
	assert.Equal(t, "org.app.Shop", report.Units[1].Class)

	base := filepath.Join(f.out, "org", "app", "Shop")
	js, err := os.ReadFile(base + ".js")
	require.NoError(t, err)
	assert.Contains(t, string(js), "Shop.prototype.buy = function(n) {")
	assert.FileExists(t, base+".map")

	data, err := os.ReadFile(base + ".stjs")
	require.NoError(t, err)
	meta, err := sourcemap.ReadMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, sourcemap.Metadata{
		Class:  "org.app.Shop",
		Source: "org/app/Shop.java",
		JS:     "org/app/Shop.js",
	}, meta)
	assert.Equal(t, []string{base + ".js", base + ".map", base + ".stjs"}, report.Units[1].Outputs)
}

func TestBuildSkipsUnchangedUnits(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()

	_, err := f.app.Build(ctx, nil)
	require.NoError(t, err)

	report, err := f.app.Build(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Generated)
	assert.Equal(t, 2, report.Skipped)

	shop := filepath.Join(f.src, "org", "app", "Shop.java")
	edited := strings.Replace(shopSource, "return x;", "return x + 1;", 1)
	require.NoError(t, os.WriteFile(shop, []byte(edited), 0o644))

	report, err = f.app.Build(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.Units[0].Skipped, "Base is unchanged")

	// A removed output forces regeneration.
	require.NoError(t, os.Remove(filepath.Join(f.out, "org", "app", "Base.js")))
	report, err = f.app.Build(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Generated)
	assert.FileExists(t, filepath.Join(f.out, "org", "app", "Base.js"))

	builds, err := f.app.Cache().RecentBuilds(10)
	require.NoError(t, err)
	assert.Len(t, builds, 4)
}

func TestBuildFailureWritesNothing(t *testing.T) {
	f := newFixture(t, map[string]string{
		"org/app/Base.java": baseSource,
		"org/app/Lock.java": "package org.app;\nclass Lock {\n  void m() {\n    synchronized (this) { }\n  }\n}\n",
	})

	report, err := f.app.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Failed)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.True(t, errors.IsCode(failures[0].Err, errors.CodeUnsupportedConstruct), "got %v", failures[0].Err)
	line, _ := errors.ContextValue(failures[0].Err, errors.CtxLine)
	assert.Equal(t, 4, line)

	assert.NoFileExists(t, filepath.Join(f.out, "org", "app", "Lock.js"))
	assert.NoFileExists(t, filepath.Join(f.out, "org", "app", "Lock.map"))
	_, ok, err := f.app.Cache().Lookup(failures[0].Source)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildDuplicateClassFailsOneUnit(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a/Dup.java": "class Dup {}\n",
		"b/Dup.java": "class Dup {}\n",
	})

	report, err := f.app.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Generated)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, filepath.Join(f.src, "b", "Dup.java"), report.Failures()[0].Source)
}

func TestBuildSyntaxErrorIsReported(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Broken.java": "class Broken {\n  void m() { int x = ; }\n}\n",
	})
	report, err := f.app.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Failures(), 1)
	assert.True(t, errors.IsCode(report.Failures()[0].Err, errors.CodeValidationError))
}

func TestBuildCancelled(t *testing.T) {
	f := defaultFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.app.Build(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanSourcesExcludes(t *testing.T) {
	f := newFixture(t, map[string]string{
		"org/app/Shop.java":     shopSource,
		"org/app/ShopTest.java": "class ShopTest {}\n",
		"target/Gen.java":       "class Gen {}\n",
		"org/app/notes.txt":     "notes",
	})
	f.app.excludeFiles, _ = compileGlobs([]string{"*Test.java"}, "exclude file")
	f.app.excludeDirs, _ = compileGlobs([]string{"target"}, "exclude dir")

	files, err := f.app.ScanSources([]string{f.src, f.src + string(filepath.Separator)})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(f.src, "org", "app", "Shop.java")}, files)
}

func TestNewRejectsInvalidExcludePattern(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude.Files = []string{"[unclosed"}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestReconstructUsesGeneratedArtifacts(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()
	_, err := f.app.Build(ctx, nil)
	require.NoError(t, err)

	js, err := os.ReadFile(filepath.Join(f.out, "org", "app", "Shop.js"))
	require.NoError(t, err)
	generated := 0
	for i, l := range strings.Split(string(js), "\n") {
		if strings.HasPrefix(l, "Shop.prototype.buy") {
			generated = i + 1
		}
	}
	require.NotZero(t, generated)

	trace := "Error: out of stock\n" +
		"    at Shop.buy (http://localhost:8080/org/app/Shop.js:" + strconv.Itoa(generated) + ":12)\n" +
		"    at run (http://localhost:8080/vendor/lib.js:7:3)\n"
	frames, err := f.app.Reconstruct(ctx, trace, "")
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, "org.app.Shop.buy(Shop.java:4)", frames[0].String())
	assert.Equal(t, "<Unknown class>.run(lib.js:7)", frames[1].String())

	_, err = f.app.Reconstruct(ctx, "Error\n    at nowhere", "")
	assert.True(t, errors.IsCode(err, errors.CodeMalformedInput))
}

func TestHandleChangesRemovesDeletedArtifacts(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()
	_, err := f.app.Build(ctx, nil)
	require.NoError(t, err)

	shop := filepath.Join(f.src, "org", "app", "Shop.java")
	require.NoError(t, os.Remove(shop))

	var reports atomic.Int32
	f.app.SetReportHandler(func(r *Report) {
		reports.Add(1)
		assert.Equal(t, 0, r.Failed)
		assert.Len(t, r.Units, 1)
	})
	f.app.HandleChanges(ctx, []string{f.src}, []string{shop})

	assert.Equal(t, int32(1), reports.Load())
	assert.NoFileExists(t, filepath.Join(f.out, "org", "app", "Shop.js"))
	assert.NoFileExists(t, filepath.Join(f.out, "org", "app", "Shop.stjs"))
	assert.FileExists(t, filepath.Join(f.out, "org", "app", "Base.js"))
	_, ok, err := f.app.Cache().Lookup(shop)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunParallel(t *testing.T) {
	var sum atomic.Int64
	require.NoError(t, runParallel(context.Background(), 3, 100, func(i int) {
		sum.Add(int64(i))
	}))
	assert.Equal(t, int64(4950), sum.Load())

	require.NoError(t, runParallel(context.Background(), 0, 0, func(int) {
		t.Fatal("no work expected")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, runParallel(ctx, 1, 10, func(int) {}), context.Canceled)
}
