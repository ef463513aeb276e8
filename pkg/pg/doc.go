// Package pg implements the PostgreSQL engine for tenant routing on top
// of the pgx/v5 driver. It supports both isolation modes: schema per
// tenant, where switching moves search_path on the live connection, and
// database per tenant, where every switch reconnects because PostgreSQL
// has no statement to change databases in place.
//
// The package keeps a very small API surface while relying on
// battle-tested upstream libraries (`pgx/v5` for connectivity, with a
// `database/sql` bridge through `pgx/v5/stdlib` for tools that need it)
// so that callers are never locked-in and can freely extend the
// behaviour where needed.
//
// # Architecture
//
// The engine exposes three cooperating building blocks:
//
//   - Config – a declarative struct whose fields are populated from
//     environment variables via github.com/caarlos0/env. It selects the
//     isolation mode and controls connect timeouts, retries and the
//     persistent schemas kept on every search_path.
//
//   - Engine – implements tenant.Engine over a single pgx connection.
//     One connection, not a pool: the active namespace is session state,
//     and a pool of sessions would each point somewhere different.
//
//   - SQLDB – bridges the active connection to database/sql for tools
//     like goose, carrying the current search_path along so migrations
//     land inside the active tenant.
//
// # Usage
//
//	package main
//
//	import (
//	    "context"
//
//	    "github.com/dmitrymomot/tenantdb/pkg/pg"
//	    "github.com/dmitrymomot/tenantdb/pkg/tenant"
//	)
//
//	func main() {
//	    cfg, err := tenant.Load()
//	    if err != nil {
//	        panic(err)
//	    }
//	    cfg.UseSchemas = true
//
//	    engine, err := pg.New(pg.Config{Mode: pg.Schemas})
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    ctx := context.Background()
//	    adapter, err := tenant.New(ctx, engine, cfg)
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer adapter.Close()
//
//	    // expose health endpoint
//	    health := pg.Healthcheck(engine)
//	    if err := health(ctx); err != nil {
//	        panic(err)
//	    }
//	}
//
// # Configuration
//
// All configuration values are provided through environment variables so
// that they can be tuned per-environment without code changes. Refer to
// the field tags in Config for exact variable names and defaults.
//
// Mode must agree with the routing configuration: pg.Schemas pairs with
// tenant.Config.UseSchemas set, pg.Databases with it unset. Both sides
// default to database isolation, so a zero configuration is consistent.
//
// # Error Handling
//
// The engine classifies driver errors for the routing layer: SQLSTATEs
// for missing and duplicated databases and schemas become tenant domain
// errors, and connection-level failures are recognized across the
// reconnect path. Convenience helpers such as [pg.IsDuplicateKeyError]
// remain available for business logic running inside tenants.
package pg
