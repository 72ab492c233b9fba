package cache

import (
	"time"

	"portfolio_reporter/internal/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL tells Set to use the cache's default expiration.
const DefaultTTL time.Duration = gocache.DefaultExpiration

// Cloner is implemented by values that can produce an independent deep copy of themselves.
type Cloner[T any] interface {
	Clone() T
}

// TTLCache is a key/value store with per-entry expiry.
// Expired entries are treated as absent on lookup even before they are purged.
// A cleanup interval of zero disables the background janitor so eviction is purely lazy.
type TTLCache struct {
	items      *gocache.Cache
	defaultTTL time.Duration
}

// New creates a TTLCache with the given default TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *TTLCache {
	return &TTLCache{
		items:      gocache.New(defaultTTL, cleanupInterval),
		defaultTTL: defaultTTL,
	}
}

// Get returns the value stored under key if it has not expired.
func (c *TTLCache) Get(key string) (any, bool) {
	v, found := c.items.Get(key)
	if found {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return v, found
}

// Set stores value under key, replacing any previous entry and restarting its expiry.
// Pass DefaultTTL to use the cache default.
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	c.items.Set(key, value, ttl)
}

// Delete removes key from the cache.
func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}

// Flush removes every entry.
func (c *TTLCache) Flush() {
	c.items.Flush()
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (c *TTLCache) Len() int {
	return c.items.ItemCount()
}

// DefaultExpiration returns the TTL applied when Set is called with DefaultTTL.
func (c *TTLCache) DefaultExpiration() time.Duration {
	return c.defaultTTL
}

// Load returns a copy of the value cached under key.
// A value of an unexpected type is reported as a miss.
func Load[T Cloner[T]](c *TTLCache, key string) (T, bool) {
	var zero T
	v, found := c.Get(key)
	if !found {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed.Clone(), true
}

// Store caches a copy of value under key so later mutations by the caller do not leak into the cache.
func Store[T Cloner[T]](c *TTLCache, key string, value T, ttl time.Duration) {
	c.Set(key, value.Clone(), ttl)
}
