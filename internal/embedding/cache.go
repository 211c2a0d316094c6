package embedding

import "sync"

// Cache memoizes embedding vectors for the process lifetime. There is no
// eviction and no cross-run persistence. Writes are idempotent (the same
// key always maps to the same vector), so concurrent writers cannot leave
// the cache inconsistent; the lock only guards the map structure itself.
type Cache struct {
	mu      sync.RWMutex
	vectors map[string][]float64
}

func NewCache() *Cache {
	return &Cache{vectors: make(map[string][]float64)}
}

func (c *Cache) Get(key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vectors[key]
	return vec, ok
}

func (c *Cache) Put(key string, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = vec
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}
