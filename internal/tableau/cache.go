package tableau

import (
	"sync"
	"time"
)

// Cache keeps resolved LUIDs for a fixed TTL. Staleness is checked on read;
// entries are never evicted otherwise.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	luid      string
	createdAt time.Time
}

type CacheOption func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey scopes a datasource name to the server it lives on.
func CacheKey(serverURL, datasourceName string) string {
	return serverURL + ":" + datasourceName
}

// Get returns the LUID if an entry exists and is younger than the TTL.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.createdAt) >= c.ttl {
		return "", false
	}
	return entry.luid, true
}

func (c *Cache) Put(key, luid string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{luid: luid, createdAt: c.now()}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
