package core

// cache.go memoizes loaded tables by (content hash, file name, format,
// sheet). It is a pure optimization: every caller gets its own deep copy,
// so no run can observe rows touched by another. Concurrent loads of the
// same key share one parse through singleflight.

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// DefaultCacheEntries bounds the cache when no size is configured.
const DefaultCacheEntries = 16

type cacheKey struct {
	hash   string
	name   string
	format loader.Format
	sheet  string
}

func (k cacheKey) String() string {
	return k.hash + "\x00" + k.name + "\x00" + string(k.format) + "\x00" + k.sheet
}

type cacheEntry struct {
	table  *table.Table
	stored time.Time
}

// LoadCache is a bounded FIFO cache of loaded tables with an optional TTL.
type LoadCache struct {
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	order   []cacheKey
}

// NewLoadCache creates a cache holding at most maxEntries tables. A ttl of
// zero keeps entries until they are evicted by size.
func NewLoadCache(maxEntries int, ttl time.Duration) *LoadCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &LoadCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[cacheKey]cacheEntry),
	}
}

// Load returns the table for the given input, parsing it on a miss. The
// boolean reports a cache hit. Load errors are never cached.
func (c *LoadCache) Load(data []byte, name string, f loader.Format, sheet string) (*table.Table, bool, error) {
	sum := sha256.Sum256(data)
	key := cacheKey{hash: hex.EncodeToString(sum[:]), name: name, format: f, sheet: sheet}

	if t, ok := c.get(key); ok {
		return t.Clone(), true, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if t, ok := c.get(key); ok {
			return t, nil
		}
		t, err := loader.Load(data, f, sheet)
		if err != nil {
			return nil, err
		}
		c.put(key, t)
		return t, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*table.Table).Clone(), false, nil
}

func (c *LoadCache) get(key cacheKey) (*table.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.table, true
}

func (c *LoadCache) put(key cacheKey, t *table.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{table: t, stored: c.now()}

	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *LoadCache) expired(e cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(e.stored) > c.ttl
}

// Sweep drops expired entries and returns how many were removed.
func (c *LoadCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	removed := 0
	for _, k := range c.order {
		if c.expired(c.entries[k]) {
			delete(c.entries, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
	return removed
}

// Len returns the number of cached tables.
func (c *LoadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
