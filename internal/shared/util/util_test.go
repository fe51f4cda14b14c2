package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := SortedStringKeys(m)
	expected := []string{"a", "b", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Fatalf("expected %q at %d, got %q", key, i, keys[i])
		}
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.txt")
	content := []byte("hello")

	if err := WriteFileWithDirs(path, content, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("expected %q, got %q", string(content), string(got))
	}
}
