package querycache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/querycache"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

var _ tenant.QueryCache = (*querycache.Cache[int])(nil)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("panics on zero capacity", func(t *testing.T) {
		t.Parallel()

		require.Panics(t, func() { querycache.New[int](0) })
	})

	t.Run("panics on negative capacity", func(t *testing.T) {
		t.Parallel()

		require.Panics(t, func() { querycache.New[int](-1) })
	})
}

func TestCache_BasicOperations(t *testing.T) {
	t.Parallel()

	t.Run("stores and retrieves", func(t *testing.T) {
		t.Parallel()

		cache := querycache.New[string](10)
		cache.Put("acme", "SELECT * FROM users", "result")

		got, ok := cache.Get("acme", "SELECT * FROM users")
		require.True(t, ok)
		assert.Equal(t, "result", got)
	})

	t.Run("misses return the zero value", func(t *testing.T) {
		t.Parallel()

		cache := querycache.New[string](10)
		got, ok := cache.Get("acme", "SELECT 1")
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("identical queries stay separate per namespace", func(t *testing.T) {
		t.Parallel()

		cache := querycache.New[int](10)
		cache.Put("acme", "SELECT count(*) FROM users", 7)
		cache.Put("globex", "SELECT count(*) FROM users", 42)

		got, ok := cache.Get("acme", "SELECT count(*) FROM users")
		require.True(t, ok)
		assert.Equal(t, 7, got)

		got, ok = cache.Get("globex", "SELECT count(*) FROM users")
		require.True(t, ok)
		assert.Equal(t, 42, got)
	})

	t.Run("put updates an existing entry", func(t *testing.T) {
		t.Parallel()

		cache := querycache.New[int](10)
		cache.Put("acme", "SELECT 1", 1)
		cache.Put("acme", "SELECT 1", 2)

		got, ok := cache.Get("acme", "SELECT 1")
		require.True(t, ok)
		assert.Equal(t, 2, got)
		assert.Equal(t, 1, cache.Len())
	})
}

func TestCache_Eviction(t *testing.T) {
	t.Parallel()

	t.Run("evicts the least recently used", func(t *testing.T) {
		t.Parallel()

		cache := querycache.New[int](2)
		cache.Put("acme", "q1", 1)
		cache.Put("acme", "q2", 2)
		cache.Put("acme", "q3", 3)

		_, ok := cache.Get("acme", "q1")
		assert.False(t, ok, "oldest entry should be evicted")
		_, ok = cache.Get("acme", "q2")
		assert.True(t, ok)
		_, ok = cache.Get("acme", "q3")
		assert.True(t, ok)
	})

	t.Run("get refreshes recency", func(t *testing.T) {
		t.Parallel()

		cache := querycache.New[int](2)
		cache.Put("acme", "q1", 1)
		cache.Put("acme", "q2", 2)

		_, ok := cache.Get("acme", "q1")
		require.True(t, ok)

		cache.Put("acme", "q3", 3)

		_, ok = cache.Get("acme", "q1")
		assert.True(t, ok, "recently read entry should survive")
		_, ok = cache.Get("acme", "q2")
		assert.False(t, ok)
	})
}

func TestCache_Remove(t *testing.T) {
	t.Parallel()

	cache := querycache.New[int](10)
	cache.Put("acme", "q1", 1)
	cache.Remove("acme", "q1")

	_, ok := cache.Get("acme", "q1")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())

	// Removing a missing entry is a no-op.
	cache.Remove("acme", "q1")
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	cache := querycache.New[int](10)
	cache.Put("acme", "q1", 1)
	cache.Put("acme", "q2", 2)
	cache.Put("globex", "q1", 3)

	cache.Invalidate("acme")

	_, ok := cache.Get("acme", "q1")
	assert.False(t, ok)
	_, ok = cache.Get("acme", "q2")
	assert.False(t, ok)

	got, ok := cache.Get("globex", "q1")
	require.True(t, ok)
	assert.Equal(t, 3, got)
	assert.Equal(t, 1, cache.Len())

	// Invalidating a namespace with no entries is a no-op.
	cache.Invalidate("initech")
	assert.Equal(t, 1, cache.Len())
}

func TestCache_Reset(t *testing.T) {
	t.Parallel()

	cache := querycache.New[int](10)
	cache.Put("acme", "q1", 1)
	cache.Put("globex", "q2", 2)

	cache.Reset()

	assert.Zero(t, cache.Len())
	_, ok := cache.Get("acme", "q1")
	assert.False(t, ok)

	// The cache stays usable after a reset.
	cache.Put("acme", "q3", 3)
	got, ok := cache.Get("acme", "q3")
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := querycache.New[int](64)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			namespace := fmt.Sprintf("tenant_%d", worker%4)
			for j := range 100 {
				query := fmt.Sprintf("SELECT %d", j%16)
				cache.Put(namespace, query, j)
				cache.Get(namespace, query)
				if j%10 == 0 {
					cache.Reset()
				}
			}
		}(i)
	}
	wg.Wait()
}
