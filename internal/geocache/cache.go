// Package geocache provides the generic TTL cache behind the delivery
// engine. Two instances are kept by the service: normalized address ->
// coordinates with a long TTL (geocoding results are durable) and
// origin|destination pair -> distance with a shorter one (zone config and
// traffic patterns change more often). They are separate instances rather
// than one store with per-entry TTLs so each eviction policy stays
// independently tunable.
package geocache

import (
	"log/slog"
	"sync"
	"time"
)

// Entry is a stored value with its lifetime. Entries are owned exclusively
// by the cache that created them.
type Entry[V any] struct {
	Value     V         `json:"value"`
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Persistence is the optional durability side channel of a cache. Load runs
// once at construction, Save after every mutation on a detached goroutine.
// Both are best-effort: a failing store degrades the cache to cold/empty,
// never the caller.
type Persistence[V any] interface {
	Load() (map[string]Entry[V], error)
	Save(entries map[string]Entry[V]) error
}

// Cache is a mutex-guarded TTL key-value store. Expired entries are purged
// lazily on read; Size may therefore count entries that are already dead.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]Entry[V]
	ttl     time.Duration
	store   Persistence[V]
	log     *slog.Logger
	now     func() time.Time
}

// New creates a cache with the given default TTL. A nil store disables
// persistence. Load failures (corrupt state, unavailable storage) are
// logged and swallowed; the cache simply starts cold.
func New[V any](defaultTTL time.Duration, store Persistence[V], log *slog.Logger) *Cache[V] {
	cache := &Cache[V]{
		entries: make(map[string]Entry[V]),
		ttl:     defaultTTL,
		store:   store,
		log:     log,
		now:     time.Now,
	}

	if store != nil {
		loaded, err := store.Load()
		if err != nil {
			log.Warn("Cache persistence load failed, starting cold", "error", err)
			return cache
		}
		for key, entry := range loaded {
			if cache.now().Before(entry.ExpiresAt) {
				cache.entries[key] = entry
			}
		}
	}

	return cache
}

// Get returns the live value for key. Absence (missing or expired) is a
// normal outcome, not a failure; expired entries are evicted on the way out.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		delete(c.entries, key)
		return zero, false
	}

	return entry.Value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores value under key, resetting expiry from now. The persistence
// flush runs detached and its failure never reaches the caller.
func (c *Cache[V]) SetTTL(key string, value V, ttl time.Duration) {
	now := c.now()

	c.mu.Lock()
	c.entries[key] = Entry[V]{Value: value, StoredAt: now, ExpiresAt: now.Add(ttl)}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.flush(snapshot)
}

// Clear empties the store. Used for operator-triggered invalidation.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry[V])
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.flush(snapshot)
}

// Size returns the current entry count. Expired entries that were never
// read again are still counted; that imprecision is acceptable for an
// observability hook.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// snapshotLocked copies the live entries for the persistence goroutine.
// Must be called with the mutex held. Returns nil when persistence is off,
// so no copy is paid in the common in-memory-only configuration.
func (c *Cache[V]) snapshotLocked() map[string]Entry[V] {
	if c.store == nil {
		return nil
	}

	snapshot := make(map[string]Entry[V], len(c.entries))
	for key, entry := range c.entries {
		snapshot[key] = entry
	}

	return snapshot
}

func (c *Cache[V]) flush(snapshot map[string]Entry[V]) {
	if c.store == nil || snapshot == nil {
		return
	}

	go func() {
		if err := c.store.Save(snapshot); err != nil {
			c.log.Warn("Cache persistence save failed", "error", err)
		}
	}()
}
