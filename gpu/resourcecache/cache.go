package resourcecache

import (
	"sync"

	"github.com/lumenforge/framegraph/common"
)

// Cache is the keyed lookup/store/remove surface described for the core's
// resource cache: one bucket per Category, O(1) average lookup, no implicit
// destruction. Every GPU object wrapper (shader, pipeline, pass, bind group,
// bind group layout, buffer, image, sampler, mesh, material) is addressed
// through it by a hashed common.Name rather than held by direct reference.
type Cache interface {
	// Fetch returns the object stored for (category, name) and whether it was present.
	//
	// Parameters:
	//   - category: the resource bucket to search
	//   - name: the hashed key to look up
	//
	// Returns:
	//   - any: the stored object, or nil if absent
	//   - bool: true if present
	Fetch(category Category, name common.Name) (any, bool)

	// Store inserts or overwrites the object at (category, name). Overwriting
	// an existing entry does not destroy the previous value; the caller must
	// have already done so if destruction is required.
	//
	// Parameters:
	//   - category: the resource bucket to write into
	//   - name: the hashed key to store under
	//   - obj: the object to store
	Store(category Category, name common.Name, obj any)

	// Remove deletes the (category, name) entry if present. It never
	// destroys the underlying GPU object; that remains the caller's
	// responsibility.
	//
	// Parameters:
	//   - category: the resource bucket to remove from
	//   - name: the hashed key to remove
	//
	// Returns:
	//   - bool: true if an entry was present and removed
	Remove(category Category, name common.Name) bool

	// Size returns the number of entries currently stored in category.
	//
	// Parameters:
	//   - category: the resource bucket to measure
	//
	// Returns:
	//   - int: entry count
	Size(category Category) int
}

type cache struct {
	mu      sync.RWMutex
	buckets [categoryCount]map[common.Name]any
}

var _ Cache = &cache{}

// New creates an empty Cache with all category buckets initialized.
//
// Returns:
//   - Cache: a ready-to-use resource cache
func New() Cache {
	c := &cache{}
	for i := range c.buckets {
		c.buckets[i] = make(map[common.Name]any)
	}
	return c
}

func (c *cache) Fetch(category Category, name common.Name) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.buckets[category][name]
	return obj, ok
}

func (c *cache) Store(category Category, name common.Name, obj any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets[category][name] = obj
}

func (c *cache) Remove(category Category, name common.Name) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.buckets[category][name]; !ok {
		return false
	}
	delete(c.buckets[category], name)
	return true
}

func (c *cache) Size(category Category) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets[category])
}
