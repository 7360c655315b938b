package heightsource

import (
	"sync"

	"github.com/Faultbox/heightview/internal/terrain"
)

// Cache keeps decoded height fields by location.
type Cache struct {
	data map[string]*terrain.HeightField
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*terrain.HeightField),
	}
}

// Get retrieves a field from cache.
func (c *Cache) Get(location string) (*terrain.HeightField, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.data[location]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return f, ok
}

// Set stores a field.
func (c *Cache) Set(location string, f *terrain.HeightField) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[location] = f
}

// Clear empties the cache and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
