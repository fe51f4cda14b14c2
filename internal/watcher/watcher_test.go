// # internal/watcher/watcher_test.go
package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(Options{
		Debounce:     100 * time.Millisecond,
		ExcludeDirs:  []string{"exclude_dir"},
		ExcludeFiles: []string{"*Test.java"},
		Extensions:   []string{".java"},
	}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	// Create a file
	testFile := filepath.Join(tmpDir, "Shop.java")
	if err := os.WriteFile(testFile, []byte("class Shop {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected to find %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("Timed out waiting for file change event")
	}

	// Test exclusion
	for _, name := range []string{"ShopTest.java", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if base := filepath.Base(p); base == "ShopTest.java" || base == "notes.txt" {
				t.Errorf("Excluded file %s triggered event", base)
			}
		}
	case <-time.After(500 * time.Millisecond):
		// Expected
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "newdir")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "Nested.java")
	if err := os.WriteFile(subFile, []byte("class Nested {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	foundNested := false
	timeout := time.After(2 * time.Second)
	for !foundNested {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == subFile {
					foundNested = true
					break
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for nested file event in newly created directory")
		}
	}
}

func TestShouldExclude(t *testing.T) {
	w, err := NewWatcher(Options{
		ExcludeDirs:  []string{".git", "target*"},
		ExcludeFiles: []string{"*Test.java"},
		Extensions:   []string{".JAVA"},
	}, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	cases := map[string]bool{
		"src/Shop.java":     false,
		"src/Shop.Java":     false,
		"src/ShopTest.java": true,
		"src/Shop.js":       true,
		"README":            true,
	}
	for path, want := range cases {
		if got := w.ShouldExcludeFile(path); got != want {
			t.Errorf("ShouldExcludeFile(%q) = %v, want %v", path, got, want)
		}
	}
	if !w.ShouldExcludeDir("/repo/target-classes") || !w.ShouldExcludeDir(".git") {
		t.Error("expected glob directory excludes to match")
	}
	if w.ShouldExcludeDir("/repo/src") {
		t.Error("src must not be excluded")
	}
}

func TestInvalidPattern(t *testing.T) {
	if _, err := NewWatcher(Options{ExcludeFiles: []string{"[unclosed"}}, func([]string) {}); err == nil {
		t.Fatal("expected an invalid glob to be rejected")
	}
}

func TestFlushIsRateLimited(t *testing.T) {
	var batches [][]string
	w, err := NewWatcher(Options{Debounce: time.Hour, MaxBatchesPerSecond: 0.001}, func(paths []string) {
		batches = append(batches, paths)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.pending["b.java"] = time.Now()
	w.pending["a.java"] = time.Now()
	w.flushChanges()
	if len(batches) != 1 || len(batches[0]) != 2 || batches[0][0] != "a.java" {
		t.Fatalf("expected one sorted batch, got %v", batches)
	}

	w.pending["c.java"] = time.Now()
	w.flushChanges()
	if len(batches) != 1 {
		t.Fatalf("second batch should have been throttled, got %v", batches)
	}
	if _, ok := w.pending["c.java"]; !ok {
		t.Fatal("throttled paths must stay pending")
	}
}
