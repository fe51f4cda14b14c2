package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"classjs/internal/shared/observability"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Entry records what the last successful generation of one source file
// produced. A unit is fresh while both its content hash and the build
// fingerprint (catalog and generator options) are unchanged.
type Entry struct {
	SourcePath  string
	SourceHash  string
	Fingerprint string
	ClassName   string
	Outputs     []string
	RunID       string
	BuiltAt     time.Time
}

// Build summarises one run.
type Build struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Generated  int
	Skipped    int
	Failed     int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("build cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("build cache path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create build cache directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite build cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite build cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the entry of sourcePath, if any.
func (s *Store) Lookup(sourcePath string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		e       Entry
		outputs string
		builtAt string
	)
	err := s.withRetry("lookup unit", func() error {
		return s.db.QueryRow(`
SELECT source_path, source_hash, fingerprint, class_name, outputs, run_id, built_at_utc
FROM units WHERE source_path = ?
`, sourcePath).Scan(&e.SourcePath, &e.SourceHash, &e.Fingerprint, &e.ClassName, &outputs, &e.RunID, &builtAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	if outputs != "" {
		e.Outputs = strings.Split(outputs, "\n")
	}
	ts, err := time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse build timestamp %q: %w", builtAt, err)
	}
	e.BuiltAt = ts.UTC()
	return e, true, nil
}

// Fresh reports whether e was generated from the same content under the
// same fingerprint.
func (e Entry) Fresh(sourceHash, fingerprint string) bool {
	return e.SourceHash == sourceHash && e.Fingerprint == fingerprint
}

func (s *Store) Record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(e.SourcePath) == "" {
		return fmt.Errorf("build cache entry without a source path")
	}
	if e.BuiltAt.IsZero() {
		e.BuiltAt = time.Now().UTC()
	}
	return s.withRetry("record unit", func() error {
		_, err := s.db.Exec(`
INSERT INTO units (source_path, source_hash, fingerprint, class_name, outputs, run_id, built_at_utc)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source_path) DO UPDATE SET
  source_hash=excluded.source_hash,
  fingerprint=excluded.fingerprint,
  class_name=excluded.class_name,
  outputs=excluded.outputs,
  run_id=excluded.run_id,
  built_at_utc=excluded.built_at_utc
`, e.SourcePath, e.SourceHash, e.Fingerprint, e.ClassName, strings.Join(e.Outputs, "\n"), e.RunID,
			e.BuiltAt.UTC().Format(time.RFC3339Nano))
		return err
	})
}

// Forget drops the entry of a source that failed or was removed.
func (s *Store) Forget(sourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withRetry("forget unit", func() error {
		_, err := s.db.Exec(`DELETE FROM units WHERE source_path = ?`, sourcePath)
		return err
	})
}

func (s *Store) RecordBuild(b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withRetry("record build", func() error {
		_, err := s.db.Exec(`
INSERT OR REPLACE INTO builds (run_id, started_at_utc, finished_at_utc, generated, skipped, failed)
VALUES (?, ?, ?, ?, ?, ?)
`, b.RunID, b.StartedAt.UTC().Format(time.RFC3339Nano), b.FinishedAt.UTC().Format(time.RFC3339Nano),
			b.Generated, b.Skipped, b.Failed)
		return err
	})
}

// RecentBuilds returns up to limit builds, newest first.
func (s *Store) RecentBuilds(limit int) ([]Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	var rows *sql.Rows
	err := s.withRetry("load builds", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT run_id, started_at_utc, finished_at_utc, generated, skipped, failed
FROM builds ORDER BY started_at_utc DESC LIMIT ?
`, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	builds := make([]Build, 0)
	for rows.Next() {
		var (
			b                   Build
			started, finishedAt string
		)
		if err := rows.Scan(&b.RunID, &started, &finishedAt, &b.Generated, &b.Skipped, &b.Failed); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		if b.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse build start %q: %w", started, err)
		}
		if b.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parse build finish %q: %w", finishedAt, err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build rows: %w", err)
	}
	return builds, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		observability.CacheRetryTotal.Inc()
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// HashContent is the content hash stored for a source file.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
