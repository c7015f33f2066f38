// Package cache holds the per-run geocode cache.
package cache

import "github.com/Houeta/csv2kml/internal/models"

// Cache maps address strings to resolved coordinates for a single conversion
// run. A nil value records a lookup that was attempted and failed, so a
// failing address is never retried within the run. Keys are case-sensitive
// exact strings. The cache is never persisted and is discarded at process end.
type Cache struct {
	entries map[string]*models.Coordinates
	hits    int
}

// New creates an empty cache for one conversion run.
func New() *Cache {
	return &Cache{entries: make(map[string]*models.Coordinates)}
}

// Get returns the cached coordinates for the address and whether an entry
// exists. A (nil, true) result means the lookup already failed once.
func (c *Cache) Get(address string) (*models.Coordinates, bool) {
	coords, ok := c.entries[address]
	if ok {
		c.hits++
	}
	return coords, ok
}

// Put records the result of a lookup; nil marks a failed resolution.
func (c *Cache) Put(address string, coords *models.Coordinates) {
	c.entries[address] = coords
}

// Len reports the number of cached addresses.
func (c *Cache) Len() int { return len(c.entries) }

// Hits reports how many Get calls found an entry.
func (c *Cache) Hits() int { return c.hits }
