// Package cache provides the three cache tiers used by the retrieval
// pipeline: an in-process exact-match LRU (L1), an in-process semantic
// FIFO (L3), and a durable Redis-backed key/value store (L2).
package cache

import (
	"container/list"
	"sync"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// ExactCache is a bounded in-process LRU from CacheKey to a ResultList.
// All reads and writes observe a single linearization order via mu; the
// mutex is held only across the map/list mutation, never across an I/O call.
type ExactCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = oldest, back = newest
}

type exactEntry struct {
	key   string
	value model.ResultList
}

// NewExact creates an ExactCache bounded at capacity entries.
func NewExact(capacity int) *ExactCache {
	return &ExactCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached ResultList for key, refreshing its recency on hit.
func (c *ExactCache) Get(key string) (model.ResultList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToBack(elem)
	return elem.Value.(*exactEntry).value, true
}

// Set stores value under key. If key already exists it is moved to the
// back (most recently used) and overwritten; otherwise it is appended at
// the back and, if the bound is exceeded, the least-recently-used entry
// at the front is evicted.
func (c *ExactCache) Set(key string, value model.ResultList) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToBack(elem)
		elem.Value.(*exactEntry).value = value
		return
	}

	elem := c.order.PushBack(&exactEntry{key: key, value: value})
	c.entries[key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*exactEntry).key)
	}
}

// Len returns the number of entries currently cached.
func (c *ExactCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Flush empties the cache. Used by the admin clear-cache endpoint.
func (c *ExactCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
}
