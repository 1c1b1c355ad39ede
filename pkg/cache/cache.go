// Package cache memoizes validated chunk classifications by content
// fingerprint for the lifetime of a single analysis run.
package cache

import (
	"strconv"
	"sync"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a content hash of a chunk's exact text
type Fingerprint uint64

// FingerprintOf returns the fingerprint of text
func FingerprintOf(text string) Fingerprint {
	return Fingerprint(xxhash.Sum64String(text))
}

// String returns the fingerprint in hex
func (f Fingerprint) String() string {
	return strconv.FormatUint(uint64(f), 16)
}

// Stats reports cache lookups
type Stats struct {
	Hits   int
	Misses int
}

// Cache is an unbounded, concurrency-safe map of fingerprint to validated result
type Cache struct {
	mu      sync.RWMutex
	entries map[Fingerprint]features.Map
	hits    int
	misses  int
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[Fingerprint]features.Map),
	}
}

// Get returns a copy of the result cached under fp
func (c *Cache) Get(fp Fingerprint) (features.Map, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.entries[fp]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return m.Clone(), true
}

// Put stores a copy of result under fp
func (c *Cache) Put(fp Fingerprint, result features.Map) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = result.Clone()
}

// Len returns the number of cached results
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses}
}
