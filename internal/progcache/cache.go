package progcache

import (
	"errors"
	"sync"
)

var errCreatePanicked = errors.New("progcache: create panicked")

// Cache is a thread-safe LRU cache of generated programs.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	inflight map[K]*call[V]
	lru      lruList[K]
	capacity int

	hits, misses, evictions uint64
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// call is a create in progress.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// New creates a cache holding at most capacity entries. A capacity below 1
// means unlimited.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		inflight: make(map[K]*call[V]),
		capacity: capacity,
	}
}

// GetOrCreate returns the value cached for key, calling create on a miss.
// create runs without the cache lock held; concurrent callers asking for the
// same key wait for the first caller's create instead of running their own.
// Errors are returned to every waiter and nothing is cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.hits++
		c.lru.moveToFront(e.node)
		c.mu.Unlock()
		return e.value, nil
	}
	if cl, ok := c.inflight[key]; ok {
		c.hits++
		c.mu.Unlock()
		<-cl.done
		return cl.val, cl.err
	}
	c.misses++
	cl := &call[V]{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	c.create(key, cl, create)
	return cl.val, cl.err
}

// create runs fn for key and publishes the result to cl's waiters, also
// when fn panics.
func (c *Cache[K, V]) create(key K, cl *call[V], fn func() (V, error)) {
	returned := false
	defer func() {
		if !returned {
			cl.err = errCreatePanicked
		}
		c.mu.Lock()
		delete(c.inflight, key)
		if cl.err == nil {
			c.entries[key] = &entry[K, V]{value: cl.val, node: c.lru.pushFront(key)}
			c.evict()
		}
		c.mu.Unlock()
		close(cl.done)
	}()
	cl.val, cl.err = fn()
	returned = true
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict drops least recently used entries until the cache fits.
// Caller must hold c.mu.
func (c *Cache[K, V]) evict() {
	if c.capacity < 1 {
		return
	}
	for len(c.entries) > c.capacity {
		key, ok := c.lru.removeOldest()
		if !ok {
			return
		}
		delete(c.entries, key)
		c.evictions++
	}
}

// Stats contains cache statistics. Hits counts lookups served without
// calling create, including those that waited on another caller's create.
type Stats struct {
	Len       int    `json:"len"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
