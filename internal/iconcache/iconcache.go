// Package iconcache loads and caches decoded icon sets (animation files)
// keyed by filesystem path. Concurrent first-accesses to the same path
// collapse into a single disk read and decode via singleflight, the same
// pattern the reference codec's mux layer uses to guard a single RIFF
// parse behind concurrent readers.
package iconcache

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tilebound/iconforge/internal/digest"
	"github.com/tilebound/iconforge/internal/dmi"
)

// entry is one cached, decoded icon set plus the digest of the file it was
// decoded from (used by the cache-validity checker, C10).
type entry struct {
	set    *dmi.IconSet
	digest string
}

// Cache loads icon sets from disk by path, memoising the decoded result.
type Cache struct {
	log   *zap.Logger
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]*entry
}

// New returns an empty Cache. A nil logger is replaced with zap.NewNop().
func New(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		log:     log,
		entries: make(map[string]*entry),
	}
}

// Load returns the decoded icon set for path, reading and decoding it from
// disk on first access and serving every later call (concurrent or not)
// from memory. Concurrent first-accesses to the same path share one disk
// read via singleflight.
func (c *Cache) Load(path string) (*dmi.IconSet, error) {
	c.mu.RLock()
	if e, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(path, func() (interface{}, error) {
		c.mu.RLock()
		if e, ok := c.entries[path]; ok {
			c.mu.RUnlock()
			return e, nil
		}
		c.mu.RUnlock()

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("iconcache: reading %s: %w", path, err)
		}
		set, err := dmi.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("iconcache: decoding %s: %w", path, err)
		}
		e := &entry{set: set, digest: digest.Bytes(data)}

		c.mu.Lock()
		c.entries[path] = e
		c.mu.Unlock()

		c.log.Debug("loaded icon set", zap.String("path", path), zap.Int("states", len(set.States)))
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry).set, nil
}

// Digest returns the content digest of the on-disk file path was loaded
// from, or ("", false) if path has not been loaded yet.
func (c *Cache) Digest(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	if !ok {
		return "", false
	}
	return e.digest, true
}

// Paths returns every path currently resident in the cache.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for p := range c.entries {
		out = append(out, p)
	}
	return out
}

// Forget evicts path from the cache, forcing the next Load to re-read and
// re-decode it from disk.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}
