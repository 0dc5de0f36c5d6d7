package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// SQLiteStore keeps entries as rows of a single table
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errs.InvalidConfiguration("cache", "sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Concurrent group runs share the store; one connection serializes
	// writers instead of failing them with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS motif_cache (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cohort TEXT NOT NULL,
		metric TEXT NOT NULL,
		motif_size INTEGER NOT NULL,
		degree REAL NOT NULL,
		random INTEGER NOT NULL,
		distribution TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Load reads the row stored under id
func (s *SQLiteStore) Load(id string) (*Entry, error) {
	var (
		entry     Entry
		random    int
		payload   string
		createdAt int64
	)
	entry.ID = id

	err := s.db.QueryRow(`
		SELECT name, cohort, metric, motif_size, degree, random, distribution, created_at
		FROM motif_cache WHERE id = ?`, id).Scan(
		&entry.Name,
		&entry.Key.Group.Cohort,
		&entry.Key.Group.Metric,
		&entry.Key.MotifSize,
		&entry.Key.Degree,
		&random,
		&payload,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entry: %w", err)
	}

	entry.Key.Random = random != 0
	entry.CreatedAt = time.UnixMilli(createdAt).UTC()

	var dist models.Distribution
	if err := json.Unmarshal([]byte(payload), &dist); err != nil {
		return nil, errs.CacheCorruption("load", err)
	}
	entry.Distribution = dist

	if err := validate(&entry, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Save inserts or replaces the row for entry
func (s *SQLiteStore) Save(entry *Entry) error {
	payload, err := json.Marshal(entry.Distribution)
	if err != nil {
		return fmt.Errorf("failed to encode distribution: %w", err)
	}

	random := 0
	if entry.Key.Random {
		random = 1
	}

	_, err = s.db.Exec(`
		INSERT INTO motif_cache (id, name, cohort, metric, motif_size, degree, random, distribution, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			distribution = excluded.distribution,
			created_at = excluded.created_at`,
		entry.ID,
		entry.Name,
		entry.Key.Group.Cohort,
		entry.Key.Group.Metric,
		entry.Key.MotifSize,
		entry.Key.Degree,
		random,
		string(payload),
		entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}

// Delete removes the row stored under id
func (s *SQLiteStore) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM motif_cache WHERE id = ?", id)
	return err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}
