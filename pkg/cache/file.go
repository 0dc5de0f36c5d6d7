package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
)

// FileStore keeps one JSON document per entry in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errs.InvalidConfiguration("cache", "cache directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Load reads the entry stored under id
func (s *FileStore) Load(id string) (*Entry, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errs.CacheCorruption("load", err)
	}
	if err := validate(&entry, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Save writes entry atomically: readers see the old or the new document,
// never a partial one.
func (s *FileStore) Save(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return os.Rename(tmp.Name(), s.path(entry.ID))
}

// Delete removes the entry stored under id
func (s *FileStore) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error { return nil }

// validate rejects decoded entries that cannot be served
func validate(entry *Entry, id string) error {
	if entry.ID != id {
		return errs.CacheCorruption("load", fmt.Errorf("entry id %q does not match %q", entry.ID, id))
	}
	if entry.Distribution.Slots() < 0 {
		return errs.CacheCorruption("load", errors.New("distribution sequences have different lengths"))
	}
	if entry.Distribution == nil {
		entry.Distribution = make(map[int][]float64)
	}
	return nil
}
