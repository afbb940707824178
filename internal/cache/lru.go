// Package cache provides the bounded in-memory result caches used by the
// aggregation orchestrator.
package cache

import (
	"container/list"
	"sync"
)

const (
	// SearchCapacity bounds the search response cache.
	SearchCapacity = 50
	// DetailsCapacity bounds the details cache.
	DetailsCapacity = 100
	// ChaptersCapacity bounds the chapter list cache.
	ChaptersCapacity = 100
)

type entry[V any] struct {
	key   string
	value V
}

// LRU is a fixed-capacity least-recently-used cache. Get promotes the
// entry; Set evicts the single coldest entry once the capacity is reached.
// All operations are atomic with respect to each other.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewLRU creates an LRU with the given capacity. Capacities below one
// are clamped to one.
func NewLRU[V any](capacity int) *LRU[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached value for key and promotes it to most recently
// used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

// Set stores value under key, evicting the least-recently-used entry
// first when the cache is full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
}

// Clear empties the cache as a single operation.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
