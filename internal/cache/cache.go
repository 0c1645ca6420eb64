package cache

import (
	"fmt"
	"sync"
	"time"
)

// Cache is a short-TTL in-memory cache keyed by "<entity-kind>:<id>". It is
// advisory only: every read path falls back to the repository on a miss and
// every write path invalidates its key, so no correctness depends on a hit.
// Expired entries are dropped lazily on read.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

type entry struct {
	value     any
	expiresAt time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Key builds the canonical "<entity-kind>:<id>" cache key.
func Key(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
