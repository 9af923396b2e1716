package enrich

import "sync"

// Cache memoizes filter descriptions by filter id for the process lifetime.
// Entries are write-once per key; there is no invalidation.
type Cache struct {
	mu sync.RWMutex
	m  map[int]string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{m: make(map[int]string)}
}

// Get returns the cached description for id, if any.
func (c *Cache) Get(id int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	desc, ok := c.m[id]
	return desc, ok
}

// Put stores the description for id. First write wins.
func (c *Cache) Put(id int, desc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[id]; !ok {
		c.m[id] = desc
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
