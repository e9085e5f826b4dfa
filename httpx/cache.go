package httpx

import (
	"sync"
	"time"
)

// Cache stores response bodies keyed by URL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// TTLCache is an in-memory Cache whose entries expire after a fixed duration.
// The zero TTL means entries never expire.
type TTLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]ttlEntry
	now     func() time.Time
}

type ttlEntry struct {
	value    []byte
	storedAt time.Time
}

// NewTTLCache returns a TTLCache with the given entry lifetime.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{ttl: ttl, entries: make(map[string]ttlEntry), now: time.Now}
}

// Get returns the cached value if present and fresh.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores the value, replacing any prior entry.
func (c *TTLCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry{value: value, storedAt: c.now()}
}
