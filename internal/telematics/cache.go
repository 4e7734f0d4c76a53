package telematics

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// responseCache is a time-boxed cache for GET payloads, keyed by
// (method, path, normalized params). Entries are evicted lazily on read and
// explicitly by the mutating operations that make them stale.
type responseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	payload   []Document
	expiresAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(method, path string, params url.Values) string {
	// url.Values.Encode sorts keys, so equivalent param sets share a key.
	return method + " " + path + "?" + params.Encode()
}

func (c *responseCache) get(key string) ([]Document, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

func (c *responseCache) put(key string, payload []Document) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// invalidate drops every cached entry for the given path, regardless of
// params.
func (c *responseCache) invalidate(path string) {
	prefix := "GET " + path + "?"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
