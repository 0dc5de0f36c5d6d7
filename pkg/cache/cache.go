// Package cache persists motif distributions keyed by group, motif size,
// degree and randomization mode.
package cache

import (
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-motif-service/pkg/errs"
	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// ErrNotFound is returned by stores for absent entries
var ErrNotFound = errors.New("cache entry not found")

// Entry is one persisted distribution
type Entry struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Key          models.CacheKey     `json:"key"`
	Distribution models.Distribution `json:"distribution"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Store is the persistence backend of a ResultCache
type Store interface {
	Load(id string) (*Entry, error)
	Save(entry *Entry) error
	Delete(id string) error
	Close() error
}

// Options configures a ResultCache
type Options struct {
	// Enabled turns the cache on. A disabled cache never touches its store.
	Enabled bool
	// MemoryEntries sizes the in-process LRU tier; 0 disables it.
	MemoryEntries int
}

// ResultCache memoizes aggregation results across runs
type ResultCache struct {
	store   Store
	opts    Options
	memory  *lru.Cache[string, models.Distribution]
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a cache over store. m may be nil.
func New(store Store, opts Options, m *metrics.Metrics, logger zerolog.Logger) (*ResultCache, error) {
	if opts.Enabled && store == nil {
		return nil, errs.InvalidConfiguration("cache", "enabled cache needs a store")
	}
	if opts.MemoryEntries < 0 {
		return nil, errs.InvalidConfiguration("cache", "memory entries must not be negative, got %d", opts.MemoryEntries)
	}

	c := &ResultCache{
		store:   store,
		opts:    opts,
		metrics: m,
		logger:  logger.With().Str("component", "cache").Logger(),
	}

	if opts.Enabled && opts.MemoryEntries > 0 {
		memory, err := lru.New[string, models.Distribution](opts.MemoryEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory tier: %w", err)
		}
		c.memory = memory
	}

	return c, nil
}

// Enabled reports whether the cache reads and writes its store
func (c *ResultCache) Enabled() bool {
	return c.opts.Enabled
}

// Get returns the cached distribution for key. Unreadable entries are
// reported as misses.
func (c *ResultCache) Get(key models.CacheKey) (models.Distribution, bool) {
	if !c.opts.Enabled {
		c.metrics.CacheLookup("disabled")
		return nil, false
	}

	name, id := Fingerprint(key)

	if c.memory != nil {
		if dist, ok := c.memory.Get(id); ok {
			c.metrics.CacheLookup("hit")
			return dist.Clone(), true
		}
	}

	entry, err := c.store.Load(id)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		c.metrics.CacheLookup("miss")
		return nil, false
	case errors.Is(err, errs.ErrCacheCorruption):
		c.logger.Warn().Err(err).Str("key", name).Msg("Discarding corrupt cache entry")
		c.metrics.CacheLookup("corrupt")
		return nil, false
	default:
		c.logger.Error().Err(err).Str("key", name).Msg("Cache lookup failed")
		c.metrics.CacheLookup("error")
		return nil, false
	}

	if entry.Key != key {
		c.logger.Warn().Str("key", name).Str("stored", entry.Name).Msg("Cache entry belongs to another key")
		c.metrics.CacheLookup("corrupt")
		return nil, false
	}

	c.metrics.CacheLookup("hit")
	c.logger.Debug().Str("key", name).Int("patterns", len(entry.Distribution)).Msg("Cache hit")

	if c.memory != nil {
		c.memory.Add(id, entry.Distribution.Clone())
	}
	return entry.Distribution, true
}

// Put stores dist under key, replacing any previous entry
func (c *ResultCache) Put(key models.CacheKey, dist models.Distribution) error {
	if !c.opts.Enabled {
		return nil
	}
	if dist.Slots() < 0 {
		return errs.InvalidConfiguration("cache", "distribution sequences have different lengths")
	}

	name, id := Fingerprint(key)
	entry := &Entry{
		ID:           id,
		Name:         name,
		Key:          key,
		Distribution: dist.Clone(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.store.Save(entry); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}

	if c.memory != nil {
		c.memory.Add(id, entry.Distribution)
	}

	c.logger.Debug().Str("key", name).Msg("Cached distribution")
	return nil
}

// Delete removes the entry for key if present
func (c *ResultCache) Delete(key models.CacheKey) error {
	if !c.opts.Enabled {
		return nil
	}
	name, id := Fingerprint(key)
	if c.memory != nil {
		c.memory.Remove(id)
	}
	if err := c.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying store
func (c *ResultCache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
