// Package imagecache holds fully-materialised IconData values keyed by an
// IconRef's content key. Two maps are kept: full (every frame/dir the
// IconRef selects) and flat (the single flattened image), populated
// independently and lazily since most callers only need one.
package imagecache

import (
	"sync"

	"github.com/tilebound/iconforge/internal/icondata"
)

// Cache is a concurrent-safe store of IconData values keyed by an IconRef
// Key(). Inserts are idempotent: inserting under a key that already holds
// an entry is a no-op, so racing transform-tree partitions computing the
// same key never clobber each other's result.
type Cache struct {
	mu       sync.RWMutex
	full     map[string]*icondata.IconData
	flat     map[string]*icondata.IconData
	refcount map[string]int
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		full:     make(map[string]*icondata.IconData),
		flat:     make(map[string]*icondata.IconData),
		refcount: make(map[string]int),
	}
}

// GetFull returns the cached full IconData for key, or (nil, false).
func (c *Cache) GetFull(key string) (*icondata.IconData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.full[key]
	return d, ok
}

// PutFull inserts d under key if no entry already exists there. Returns
// the entry now stored under key (either d, or a pre-existing winner from
// a racing insert).
func (c *Cache) PutFull(key string, d *icondata.IconData) *icondata.IconData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.full[key]; ok {
		return existing
	}
	c.full[key] = d
	return d
}

// GetFlat returns the cached flattened IconData for key, or (nil, false).
func (c *Cache) GetFlat(key string) (*icondata.IconData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.flat[key]
	return d, ok
}

// PutFlat inserts d, which is stored as given (the caller flattens it),
// under key if not already present, and returns the winning entry.
func (c *Cache) PutFlat(key string, d *icondata.IconData) *icondata.IconData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.flat[key]; ok {
		return existing
	}
	c.flat[key] = d
	return d
}

// Acquire marks key as in use, incrementing its reference count. Callers
// holding the result of GetFull/GetFlat/PutFull/PutFlat across an
// asynchronous job should bracket that usage with Acquire/Release so
// Cleanup cannot evict an entry a job is still reading.
func (c *Cache) Acquire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refcount[key]++
}

// Release decrements key's reference count.
func (c *Cache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refcount[key] > 0 {
		c.refcount[key]--
		if c.refcount[key] == 0 {
			delete(c.refcount, key)
		}
	}
}

// InUse reports whether key currently has outstanding Acquire calls.
func (c *Cache) InUse(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refcount[key] > 0
}

// Cleanup drops every cache entry not currently in use, returning the
// number of entries removed from each map. Entries with an outstanding
// Acquire are left in place.
func (c *Cache) Cleanup() (fullRemoved, flatRemoved int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.full {
		if c.refcount[k] > 0 {
			continue
		}
		delete(c.full, k)
		fullRemoved++
	}
	for k := range c.flat {
		if c.refcount[k] > 0 {
			continue
		}
		delete(c.flat, k)
		flatRemoved++
	}
	return
}

// Len returns the number of entries in the full and flat maps.
func (c *Cache) Len() (full, flat int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.full), len(c.flat)
}
