package inp

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// ModelCache keeps parsed models in memory with LRU eviction.
//
// Memory use is estimated from node, element and constraint counts. When a
// new model would push the estimate past the limit, least recently used
// models are evicted first.
//
// Example:
//
//	cache := inp.NewModelCache(256 * 1024 * 1024)
//	model, err := cache.Get("femur.inp", func() (*inp.Model, error) {
//	    return parser.Parse("femur.inp")
//	})
type ModelCache struct {
	maxMemory  int64
	usedMemory int64
	models     map[string]*cacheEntry
	lru        *list.List // most recent at front
	mu         sync.Mutex

	hits   int
	misses int
}

type cacheEntry struct {
	name         string
	model        *Model
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewModelCache creates a cache with the given memory limit in bytes. A limit
// of 0 means unlimited.
func NewModelCache(maxMemoryBytes int64) *ModelCache {
	return &ModelCache{
		maxMemory: maxMemoryBytes,
		models:    make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get returns the cached model or loads it with loader on a miss. A model too
// large for the cache is returned without being cached.
func (c *ModelCache) Get(name string, loader func() (*Model, error)) (*Model, error) {
	c.mu.Lock()
	if entry, ok := c.models[name]; ok {
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.hits++
		c.mu.Unlock()
		return entry.model, nil
	}
	c.misses++
	c.mu.Unlock()

	model, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	_ = c.Add(name, model)
	return model, nil
}

// Add caches model under name, evicting least recently used models to make
// room. It fails when the model alone exceeds the limit.
func (c *ModelCache) Add(name string, model *Model) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	memSize := estimateModelMemory(model)

	if entry, ok := c.models[name]; ok {
		c.usedMemory += memSize - entry.memorySize
		entry.model = model
		entry.memorySize = memSize
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.evictOver(entry)
		return nil
	}

	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("model too large for cache (%d bytes > %d bytes max)", memSize, c.maxMemory)
	}

	entry := &cacheEntry{
		name:         name,
		model:        model,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.models[name] = entry
	c.usedMemory += memSize
	c.evictOver(entry)
	return nil
}

// evictOver evicts from the back of the LRU list until the cache fits, never
// evicting keep. Must be called with c.mu locked.
func (c *ModelCache) evictOver(keep *cacheEntry) {
	if c.maxMemory <= 0 {
		return
	}
	for c.usedMemory > c.maxMemory {
		elem := c.lru.Back()
		if elem == nil || elem.Value.(*cacheEntry) == keep {
			return
		}
		c.removeElement(elem)
	}
}

// Must be called with c.mu locked.
func (c *ModelCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.models, entry.name)
	c.usedMemory -= entry.memorySize
}

// Remove explicitly removes a model from the cache.
func (c *ModelCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.models[name]; ok {
		c.removeElement(entry.element)
	}
}

// Clear removes all models from the cache.
func (c *ModelCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.models = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *ModelCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	totalAccess := 0
	for _, entry := range c.models {
		totalAccess += entry.accessCount
	}
	return CacheStats{
		ModelCount:  len(c.models),
		UsedMemory:  c.usedMemory,
		MaxMemory:   c.maxMemory,
		TotalAccess: totalAccess,
		Hits:        c.hits,
		Misses:      c.misses,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	ModelCount  int   // Number of models currently cached
	UsedMemory  int64 // Estimated memory usage in bytes
	MaxMemory   int64 // Maximum memory limit in bytes
	TotalAccess int   // Accesses across all cached models
	Hits        int
	Misses      int
}

// HitRate returns the fraction of Get calls served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// estimateModelMemory approximates the memory held by a model:
//   - base overhead: 1KB
//   - nodes: 64 bytes each
//   - elements: 48 bytes plus 8 per connectivity entry
//   - constraint entries: 32 bytes each
func estimateModelMemory(m *Model) int64 {
	if m == nil {
		return 0
	}
	size := int64(1024)
	size += int64(m.NodeCount()) * 64
	for _, e := range m.Elements() {
		size += 48 + int64(len(e.Nodes))*8
	}
	for _, c := range m.Constraints() {
		size += int64(len(c.Entries)) * 32
	}
	return size
}
