// Package schemaloader populates freshly created tenants with the
// application schema and optional seed data.
//
// Two schema sources are supported: a SQL structure dump replayed
// statement by statement, which is fast and matches what the default
// database looks like, or a goose migrations directory applied from
// scratch. A configured structure file wins over migrations. Seeding
// executes a plain SQL file after the schema is in place.
//
// The loader implements tenant.SchemaImporter and tenant.Seeder, so it
// plugs straight into the adapter:
//
//	loader, err := schemaloader.New(cfg, engine, slog.Default())
//	adapter, err := tenant.New(ctx, engine, tenantCfg,
//		tenant.WithSchemaImporter(loader),
//		tenant.WithSeeder(loader),
//	)
//
// All statements run on a connection scoped to the tenant being
// provisioned, obtained from the engine's SQLDB bridge.
package schemaloader
