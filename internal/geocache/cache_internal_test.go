package geocache

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*Cache[string], *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := New[string](ttl, nil, slog.Default())
	cache.now = func() time.Time { return now }

	return cache, &now
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(time.Hour)

	cache.Set("campinas, sp", "value")

	got, ok := cache.Get("campinas, sp")
	require.True(t, ok)
	assert.Equal(t, "value", got)
	assert.Equal(t, 1, cache.Size())
}

func TestCacheMissIsNormal(t *testing.T) {
	cache, _ := newTestCache(time.Hour)

	got, ok := cache.Get("never stored")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestCacheExpiry(t *testing.T) {
	cache, now := newTestCache(time.Hour)

	cache.Set("key", "value")

	// Just before expiry the entry is still live.
	*now = now.Add(time.Hour - time.Second)
	_, ok := cache.Get("key")
	assert.True(t, ok)

	// At expiry the entry behaves as absent and is evicted.
	*now = now.Add(time.Second)
	_, ok = cache.Get("key")
	assert.False(t, ok)
	assert.Zero(t, cache.Size())
}

func TestCacheSetResetsExpiry(t *testing.T) {
	cache, now := newTestCache(time.Hour)

	cache.Set("key", "old")
	*now = now.Add(50 * time.Minute)
	cache.Set("key", "new")
	*now = now.Add(30 * time.Minute)

	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestCacheSetTTLOverride(t *testing.T) {
	cache, now := newTestCache(time.Hour)

	cache.SetTTL("short", "value", time.Minute)
	*now = now.Add(2 * time.Minute)

	_, ok := cache.Get("short")
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	cache, _ := newTestCache(time.Hour)

	cache.Set("a", "1")
	cache.Set("b", "2")
	require.Equal(t, 2, cache.Size())

	cache.Clear()

	assert.Zero(t, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestCacheSkipsExpiredEntriesOnLoad(t *testing.T) {
	now := time.Now()
	store := &memoryPersistence[string]{entries: map[string]Entry[string]{
		"live":    {Value: "v", StoredAt: now.Add(-time.Minute), ExpiresAt: now.Add(time.Hour)},
		"expired": {Value: "v", StoredAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
	}}

	cache := New[string](time.Hour, store, slog.Default())

	_, ok := cache.Get("live")
	assert.True(t, ok)
	_, ok = cache.Get("expired")
	assert.False(t, ok)
}

func TestCacheLoadFailureStartsCold(t *testing.T) {
	store := &memoryPersistence[string]{loadErr: assert.AnError}

	cache := New[string](time.Hour, store, slog.Default())

	assert.Zero(t, cache.Size())
	cache.Set("key", "value") // save failures must not surface either
	_, ok := cache.Get("key")
	assert.True(t, ok)
}

// memoryPersistence fakes the durability side channel.
type memoryPersistence[V any] struct {
	entries map[string]Entry[V]
	loadErr error
	saveErr error
}

func (m *memoryPersistence[V]) Load() (map[string]Entry[V], error) {
	return m.entries, m.loadErr
}

func (m *memoryPersistence[V]) Save(map[string]Entry[V]) error {
	return m.saveErr
}
