package querycache

import (
	"container/list"
	"strings"
	"sync"
)

type entry[V any] struct {
	key   string
	value V
}

// Cache is a thread-safe LRU cache for query results in a multi-tenant
// connection. Keys combine the namespace and the statement, so entries
// never collide across tenants; the adapter additionally drops the
// whole cache on every switch via Reset.
type Cache[V any] struct {
	capacity int
	items    map[string]*list.Element
	eviction *list.List
	mu       sync.Mutex
}

// New creates a cache holding up to capacity results.
// The capacity must be positive, otherwise it panics.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		panic("query cache capacity must be positive")
	}
	return &Cache[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

// Get retrieves a cached result and marks it as recently used.
// Returns the value and true if found, zero value and false otherwise.
func (c *Cache[V]) Get(namespace, query string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[cacheKey(namespace, query)]; ok {
		c.eviction.MoveToFront(elem)
		return elem.Value.(*entry[V]).value, true
	}

	var zero V
	return zero, false
}

// Put stores a result for a query in the given namespace. If the cache
// is at capacity, the least recently used result is evicted.
func (c *Cache[V]) Put(namespace, query string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(namespace, query)
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		elem.Value.(*entry[V]).value = value
		return
	}

	c.items[key] = c.eviction.PushFront(&entry[V]{key: key, value: value})
	if c.eviction.Len() > c.capacity {
		if oldest := c.eviction.Back(); oldest != nil {
			c.eviction.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}
}

// Remove drops a single cached result.
func (c *Cache[V]) Remove(namespace, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[cacheKey(namespace, query)]; ok {
		c.eviction.Remove(elem)
		delete(c.items, elem.Value.(*entry[V]).key)
	}
}

// Invalidate drops every cached result belonging to the namespace,
// leaving other tenants' entries in place. Called when a tenant is
// dropped.
func (c *Cache[V]) Invalidate(namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := namespace + "\x00"
	for elem := c.eviction.Front(); elem != nil; {
		next := elem.Next()
		if ent := elem.Value.(*entry[V]); strings.HasPrefix(ent.key, prefix) {
			c.eviction.Remove(elem)
			delete(c.items, ent.key)
		}
		elem = next
	}
}

// Len reports the number of cached results across all namespaces.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Reset drops every cached result. The adapter calls it on each tenant
// switch.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.eviction.Init()
}

// cacheKey joins namespace and query with a separator that appears in
// neither, keeping tenants apart even for identical statements.
func cacheKey(namespace, query string) string {
	return namespace + "\x00" + query
}
