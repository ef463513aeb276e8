// Package querycache provides an LRU cache for query results on a
// multi-tenant connection.
//
// Results are keyed by namespace and statement, and the cache implements
// tenant.QueryCache so the adapter resets it on every switch and drops a
// tenant's entries when the tenant is dropped:
//
//	cache := querycache.New[[]Row](512)
//	adapter, err := tenant.New(ctx, engine, cfg, tenant.WithQueryCache(cache))
//
//	if rows, ok := cache.Get(ns, query); ok {
//		return rows, nil
//	}
//	rows := runQuery(ctx, query)
//	cache.Put(ns, query, rows)
package querycache
