package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture name to a decoded RGBA image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache resolves textures from inlined blobs first, then from files found
// next to the document. It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
	index *Index
	store *Store
}

// NewCache creates a texture cache over index and store; either may be nil.
func NewCache(index *Index, store *Store) *Cache {
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
		store: store,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	if c.store != nil {
		if img := c.store.Resolve(texName); img != nil {
			return img
		}
	}
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	c.mu.RLock()
	if img, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return img
	}
	c.mu.RUnlock()

	img, _ := LoadTexture(path)

	// double-check after the load
	c.mu.Lock()
	if prev, exists := c.items[path]; exists {
		c.mu.Unlock()
		return prev
	}
	c.items[path] = img
	c.mu.Unlock()
	return img
}
