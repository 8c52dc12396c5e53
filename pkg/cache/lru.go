package cache

import (
	"container/list"
	"sync"
)

// EvictFunc is called for every value leaving the cache through capacity
// eviction, Remove or Purge. It runs after the cache lock is released, so it
// may call back into the cache.
type EvictFunc[K comparable, V any] func(key K, value V)

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithEvictFunc registers fn as the eviction hook.
func WithEvictFunc[K comparable, V any](fn EvictFunc[K, V]) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU keeps at most capacity entries, discarding the least recently used.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List
	onEvict  EvictFunc[K, V]
}

// New creates an LRU. It panics when capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	c := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key. A replaced value is not passed to the
// eviction hook; the least recently used entry pushed out by capacity is.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
	evicted := c.trim()
	c.mu.Unlock()

	c.notify(evicted)
}

// GetOrCreate returns the cached value for key, or stores and returns the
// result of create. loaded reports whether the value was already present.
// create runs under the cache lock and must not use the cache.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) (value V, loaded bool) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return el.Value.(*entry[K, V]).value, true
	}
	value = create()
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
	evicted := c.trim()
	c.mu.Unlock()

	c.notify(evicted)
	return value, false
}

// Remove deletes key, reporting whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	e := c.unlink(el)
	c.mu.Unlock()

	c.notify([]*entry[K, V]{e})
	return true
}

// Purge empties the cache, passing every entry to the eviction hook.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	evicted := make([]*entry[K, V], 0, len(c.items))
	for el := c.order.Back(); el != nil; el = c.order.Back() {
		evicted = append(evicted, c.unlink(el))
	}
	c.mu.Unlock()

	c.notify(evicted)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

func (c *LRU[K, V]) trim() []*entry[K, V] {
	var evicted []*entry[K, V]
	for len(c.items) > c.capacity {
		evicted = append(evicted, c.unlink(c.order.Back()))
	}
	return evicted
}

func (c *LRU[K, V]) unlink(el *list.Element) *entry[K, V] {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.items, e.key)
	return e
}

func (c *LRU[K, V]) notify(evicted []*entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range evicted {
		c.onEvict(e.key, e.value)
	}
}
