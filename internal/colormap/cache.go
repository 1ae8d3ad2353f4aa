package colormap

import "sync"

// Cache stores generated colormaps by key.
//
// Implementations must tolerate concurrent Put calls for the same key: the
// generator may race to fill an entry, and every racer writes an identical
// value.
type Cache interface {
	Get(key Key) (*Colormap, bool)
	Put(key Key, m *Colormap)
}

// MemoryCache provides thread-safe in-process caching of colormaps.
//
// Entries are never evicted. The key space is small in practice (a handful of
// gradients at one or two shade counts), so growth is bounded by usage.
type MemoryCache struct {
	mu   sync.RWMutex
	maps map[Key]*Colormap
}

// NewMemoryCache creates an empty colormap cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{maps: make(map[Key]*Colormap)}
}

// Get returns the cached colormap for key.
func (c *MemoryCache) Get(key Key) (*Colormap, bool) {
	c.mu.RLock()
	m, ok := c.maps[key]
	c.mu.RUnlock()
	return m, ok
}

// Put stores m under key, overwriting any previous entry.
func (c *MemoryCache) Put(key Key, m *Colormap) {
	c.mu.Lock()
	c.maps[key] = m
	c.mu.Unlock()
}

// Len returns the number of cached colormaps.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.maps)
}

// Clear removes all cached colormaps.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.maps = make(map[Key]*Colormap)
	c.mu.Unlock()
}
