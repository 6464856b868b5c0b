// Package cache stores query responses with a per-entry time-to-live in two
// tiers: a durable key-value store and an in-process map that mirrors it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL applies when Set is called without an explicit TTL.
const DefaultTTL = 6 * time.Hour

// Storage is the durable tier. Implementations must be safe for concurrent use.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Entry is the serialized form of a cached value.
type Entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt int64           `json:"storedAt"` // unix milliseconds
	TTL      int64           `json:"ttl"`      // milliseconds
}

// validAt reports whether the entry is fresh at now.
func (e Entry) validAt(now time.Time) bool {
	return now.UnixMilli()-e.StoredAt <= e.TTL
}

// Cache is a two-tier TTL cache. Construct one per process with New and
// share it; it holds no per-request state.
type Cache struct {
	store      Storage
	defaultTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu     sync.RWMutex
	memory map[string]Entry

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithDefaultTTL sets the TTL used when Set receives a non-positive TTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock sets the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// New creates a cache over the given durable store. A nil store yields a
// memory-only cache.
func New(store Storage, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		defaultTTL: DefaultTTL,
		now:        time.Now,
		logger:     slog.Default(),
		memory:     make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if a fresh entry exists in either
// tier. Stale or corrupt durable entries are purged and never reported as
// errors.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	now := c.now()

	if entry, ok := c.getDurable(key, now); ok {
		c.mu.Lock()
		c.memory[key] = entry
		c.mu.Unlock()
		c.hits.Add(1)
		return entry.Value, true
	}

	c.mu.RLock()
	entry, ok := c.memory[key]
	c.mu.RUnlock()
	if ok {
		if entry.validAt(now) {
			c.hits.Add(1)
			return entry.Value, true
		}
		c.mu.Lock()
		delete(c.memory, key)
		c.mu.Unlock()
		c.evictions.Add(1)
	}

	c.misses.Add(1)
	return nil, false
}

// getDurable reads and validates the durable entry for key.
func (c *Cache) getDurable(key string, now time.Time) (Entry, bool) {
	if c.store == nil {
		return Entry{}, false
	}

	raw, ok, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || len(entry.Value) == 0 {
		c.logger.Debug("purging corrupt cache entry", "key", key)
		c.purgeDurable(key)
		return Entry{}, false
	}
	if !entry.validAt(now) {
		c.purgeDurable(key)
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) purgeDurable(key string) {
	c.evictions.Add(1)
	if err := c.store.Delete(key); err != nil {
		c.logger.Warn("cache delete failed", "key", key, "error", err)
	}
}

// Set writes value to both tiers. A non-positive ttl selects the default.
// Durable write failures are logged; the in-memory tier still holds the value.
func (c *Cache) Set(key string, value json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	entry := Entry{
		Value:    value,
		StoredAt: c.now().UnixMilli(),
		TTL:      ttl.Milliseconds(),
	}

	c.mu.Lock()
	c.memory[key] = entry
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(key, string(data)); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// WithCache returns the cached value for key decoded into T, or runs produce,
// stores its result and returns it. Producer errors are returned unchanged
// and nothing is cached for them.
func WithCache[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.logger.Debug("cached value does not decode, refetching", "key", key)
	}

	v, err := produce(ctx)
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, fmt.Errorf("encoding cache value: %w", err)
	}
	c.Set(key, data, ttl)
	return v, nil
}

// Stats holds in-process cache counters.
type Stats struct {
	MemoryEntries int   `json:"memory_entries"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Evictions     int64 `json:"evictions"`
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.memory)
	c.mu.RUnlock()
	return Stats{
		MemoryEntries: n,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
	}
}
