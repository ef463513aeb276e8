// Package tenant routes a database connection between tenants for SaaS applications that isolate customers at the database level.
//
// The package implements two isolation strategies behind one adapter API.
// With database isolation every tenant lives in its own database, possibly
// on its own server; with schema isolation tenants share one database and
// each occupies a namespace inside it. Callers switch tenants, scope work
// to a tenant, and provision or remove tenants without caring which
// strategy is active.
//
// # Architecture
//
// The package is built around three core concepts:
//
// 1. Engines - Wrap a database driver and expose connect, execute, and the driver-specific statements and error classes
// 2. Strategies - Decide how a switch moves the connection: a namespace statement, or a reconnect for tenants on other servers
// 3. Adapter - Orchestrates validation, environment qualification, switching, provisioning, and restore guarantees
//
// Engines live in their own packages (pg, mysql, mssql) so applications
// only link the driver they use. An engine's isolation mode must agree
// with Config.UseSchemas: a schemas-mode engine pairs with UseSchemas
// set, a databases-mode engine with it unset. Both sides default to
// database isolation.
//
// # Usage
//
//	import (
//		"github.com/dmitrymomot/tenantdb/pkg/pg"
//		"github.com/dmitrymomot/tenantdb/pkg/tenant"
//	)
//
//	cfg, err := tenant.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg.UseSchemas = true
//
//	engine, err := pg.New(pg.Config{Mode: pg.Schemas})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	adapter, err := tenant.New(ctx, engine, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer adapter.Close()
//
//	// Provision a tenant and load its schema
//	err = adapter.Create(ctx, "acme")
//
//	// Run work scoped to a tenant; the previous connection target is
//	// restored afterwards no matter what happens inside
//	err = adapter.Process(ctx, "acme", func(ctx context.Context) error {
//		return doBilling(ctx)
//	})
//
//	// Or switch until further notice
//	err = adapter.Switch(ctx, "acme")
//
// # Switching Semantics
//
// Switch points the connection at a tenant until the next switch or
// reset. Process wraps a function between a switch and a guaranteed
// restore: whatever the function does, including panicking, the
// connection comes back to its previous target, falling back to a hard
// reset when the restore itself fails. Restore problems never mask the
// original error.
//
// A switch to a tenant that does not exist returns ErrTenantNotFound and
// leaves the connection on a namespace that exists. The adapter never
// leaves the connection aimed at a missing tenant.
//
// # Environment Qualification
//
// Several deployment environments can share one database server by
// tagging tenant names with the environment. With PrependEnvironment a
// tenant "acme" in environment "staging" lives in "staging_acme"; with
// AppendEnvironment in "acme_staging". Qualification is idempotent, so
// already-qualified names pass through all adapter operations unchanged.
//
// # HTTP Integration
//
// Resolvers extract tenant identifiers from requests (subdomain, header,
// path, full host, or any combination), and the middleware serves each
// request inside Process:
//
//	mw := tenant.Middleware(adapter, tenant.NewSubdomainResolver(".saas.example.com"),
//		tenant.WithSkipPaths("/health", "/static"),
//	)
//	router.Use(mw)
//
// Handlers read the active tenant with FromContext.
//
// # Error Handling
//
// The package defines specific errors for common failure scenarios:
//
//   - ErrTenantNotFound: Switch or drop targeted a missing tenant
//   - ErrTenantExists: Create targeted an existing tenant
//   - ErrInvalidIdentifier: Malformed tenant name
//   - ErrInvalidConfig: Unusable adapter configuration
//   - ErrSchemaImport, ErrSeedData: Provisioning a tenant failed partway
//
// Only errors raised while connecting to, creating, or dropping a tenant
// are translated; errors from the tenant's own workload propagate
// unchanged.
//
// # Concurrency
//
// An Adapter is bound to a single connection and is not safe for
// concurrent use. Run one adapter per connection and scope concurrent
// work with Process, or put adapters behind a pool of your own.
package tenant
