package embeds

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheTTL applies when a cache is given a non-positive TTL.
const DefaultCacheTTL = time.Hour

// Cache stores full embed records with a TTL. Only successful resolutions are
// ever written, which is why Set accepts Full rather than Record.
type Cache interface {
	Get(ctx context.Context, key string) (Full, bool, error)
	Set(ctx context.Context, key string, value Full, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cacheEntry struct {
	value   Full
	expires time.Time
}

// MemoryCache is an in-process Cache. Expiry is checked against its own clock
// on every read, so an entry is a miss once expired even if the janitor has
// not evicted it yet.
type MemoryCache struct {
	items *gocache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache returns a cache whose entries live for ttl by default and are
// swept every cleanup interval.
func NewMemoryCache(ttl, cleanup time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemoryCache{
		items: gocache.New(ttl, cleanup),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithNowFunc allows tests to override the time source.
func (c *MemoryCache) WithNowFunc(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Get returns the live entry for key.
func (c *MemoryCache) Get(_ context.Context, key string) (Full, bool, error) {
	item, ok := c.items.Get(key)
	if !ok {
		return Full{}, false, nil
	}
	entry, ok := item.(cacheEntry)
	if !ok || !c.now().Before(entry.expires) {
		// expired entries are left for the janitor
		return Full{}, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key, replacing any previous entry.
func (c *MemoryCache) Set(_ context.Context, key string, value Full, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.items.Set(key, cacheEntry{value: value, expires: c.now().Add(ttl)}, ttl)
	return nil
}

// Delete evicts key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// itemCount reports how many entries are held, including expired ones not yet swept.
func (c *MemoryCache) itemCount() int {
	return c.items.ItemCount()
}
