package catalogue

import (
	"sync"
	"time"
)

// placesTTL is the time-to-live for the cached places list.
const placesTTL = time.Hour

// Cache is a single-writer/many-reader cache for the catalogue's "places"
// list, shared by every worker in the producer pool. A plain sync.RWMutex is
// enough here: there is exactly one cached value (not a set under eviction
// pressure), so an LRU structure would be the wrong shape for this job.
type Cache struct {
	mu        sync.RWMutex
	places    []Place
	timestamp time.Time
	valid     bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached places if the TTL has not elapsed.
func (c *Cache) Get() ([]Place, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return nil, false
	}
	if time.Since(c.timestamp) >= placesTTL {
		return nil, false
	}
	out := make([]Place, len(c.places))
	copy(out, c.places)
	return out, true
}

// Set stores a fresh places list with the current time as its timestamp.
// Concurrent fetches for a missing value may duplicate work once; the last
// writer wins, which is acceptable for a TTL cache of this kind.
func (c *Cache) Set(places []Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.places = places
	c.timestamp = time.Now()
	c.valid = true
}

// Clear invalidates the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.places = nil
}
