// Package cache provides a process-local cache for symbol files and location
// lookup tables read by the graphics product generator. Both are read-only,
// consumed-once resources, so a size-bounded LRU avoids re-reading and
// re-parsing a symbol file referenced by many @symbol directives across a
// large fpdf program or loop.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/fpasys/fpagpgen/pkg/units"
)

// DefaultResourceCacheSize is the default maximum memory size for the resource cache (64 MB).
const DefaultResourceCacheSize = 64 * units.MiB

// bytesPerKB is the number of bytes in a kilobyte.
const bytesPerKB = float64(units.KiB)

// Resource is a cached, parsed file: a symbol library file or a
// loop_location_look_up table, keyed by its resolved filesystem path.
type Resource struct {
	Path string
	Data []byte
}

// Clone returns a deep copy of the resource so cached data is never mutated
// by a caller that holds the returned pointer past the next Put.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}

	data := make([]byte, len(r.Data))
	copy(data, r.Data)

	return &Resource{Path: r.Path, Data: data}
}

// ResourceCache is a size-bounded LRU cache for symbol/lookup file contents.
// It tracks memory usage and evicts least-recently-used entries once the
// limit is exceeded, favoring eviction of large, rarely-reused entries.
type ResourceCache struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	head        *entry // Most recently used.
	tail        *entry // Least recently used.
	maxSize     int64
	currentSize int64
	spill       *SpillDir

	hits   atomic.Int64
	misses atomic.Int64
}

// SetSpillDir attaches an on-disk lz4 spill target: entries evicted from
// memory afterward are written there instead of simply dropped, and Get can
// recover them on a miss. A nil spill disables this (the default).
func (c *ResourceCache) SetSpillDir(spill *SpillDir) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.spill = spill
}

// entry is a doubly-linked list node for LRU tracking.
type entry struct {
	path        string
	resource    *Resource
	size        int64
	accessCount int64
	prev        *entry
	next        *entry
}

// evictionCost ranks entries for eviction: low cost (large, rarely reused)
// is evicted before high cost (small, frequently reused).
func (e *entry) evictionCost() float64 {
	if e.size == 0 {
		return float64(e.accessCount)
	}

	sizeKB := float64(e.size) / bytesPerKB
	if sizeKB < 1 {
		sizeKB = 1
	}

	return float64(e.accessCount) / sizeKB
}

// NewResourceCache creates a resource cache with the given maximum byte size.
// A non-positive size selects DefaultResourceCacheSize.
func NewResourceCache(maxSize int64) *ResourceCache {
	if maxSize <= 0 {
		maxSize = DefaultResourceCacheSize
	}

	return &ResourceCache{
		entries: make(map[string]*entry),
		maxSize: maxSize,
	}
}

// Get retrieves a resource by path, falling back to the spill directory (if
// attached) on an in-memory miss. Returns nil if not cached anywhere.
func (c *ResourceCache) Get(path string) *Resource {
	c.mu.Lock()

	e, ok := c.entries[path]
	if ok {
		c.hits.Add(1)
		e.accessCount++
		c.moveToFront(e)

		resource := e.resource

		c.mu.Unlock()

		return resource
	}

	spill := c.spill

	c.mu.Unlock()

	if spill != nil {
		if resource, err := spill.Read(path); err == nil {
			c.hits.Add(1)
			c.Put(path, resource)

			return resource
		}
	}

	c.misses.Add(1)

	return nil
}

// Put inserts or refreshes a resource in the cache.
func (c *ResourceCache) Put(path string, resource *Resource) {
	if resource == nil {
		return
	}

	size := int64(len(resource.Data))
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		e.accessCount++
		c.moveToFront(e)

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	safe := resource.Clone()

	e := &entry{
		path:        path,
		resource:    safe,
		size:        size,
		accessCount: 1,
	}

	c.entries[path] = e
	c.currentSize += size
	c.addToFront(e)
}

// Stats returns cache performance counters.
func (c *ResourceCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns the cache hit rate in [0, 1].
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// Clear empties the cache.
func (c *ResourceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.head = nil
	c.tail = nil
	c.currentSize = 0
}

func (c *ResourceCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}

	c.removeFromList(e)
	c.addToFront(e)
}

func (c *ResourceCache) addToFront(e *entry) {
	e.prev = nil
	e.next = c.head

	if c.head != nil {
		c.head.prev = e
	}

	c.head = e

	if c.tail == nil {
		c.tail = e
	}
}

func (c *ResourceCache) removeFromList(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

// evictionSampleSize caps the tail scan for size-aware eviction to O(k).
const evictionSampleSize = 5

func (c *ResourceCache) evictLowestCost() {
	if c.tail == nil {
		return
	}

	var candidates [evictionSampleSize]*entry

	count := 0
	e := c.tail

	for e != nil && count < evictionSampleSize {
		candidates[count] = e
		count++
		e = e.prev
	}

	if count == 0 {
		return
	}

	victim := candidates[0]
	lowestCost := victim.evictionCost()

	for i := 1; i < count; i++ {
		cost := candidates[i].evictionCost()
		if cost < lowestCost {
			lowestCost = cost
			victim = candidates[i]
		}
	}

	c.removeFromList(victim)
	delete(c.entries, victim.path)
	c.currentSize -= victim.size

	if c.spill != nil {
		_, _ = c.spill.Write(victim.resource)
	}
}
