package schemaloader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

type Config struct {
	StructureFile   string `env:"SCHEMA_STRUCTURE_FILE"`                                  // StructureFile is a SQL dump loaded into new tenants. Preferred over migrations when set.
	MigrationsPath  string `env:"SCHEMA_MIGRATIONS_PATH"`                                 // MigrationsPath is the path to the goose migrations directory.
	MigrationsTable string `env:"SCHEMA_MIGRATIONS_TABLE" envDefault:"schema_migrations"` // MigrationsTable is the name of the table used to store the migration version.
	SeedFile        string `env:"SCHEMA_SEED_FILE"`                                       // SeedFile is a SQL file executed after import when seeding is enabled.
	Dialect         string `env:"SCHEMA_DIALECT" envDefault:"postgres"`                   // Dialect is the goose dialect: postgres, mysql or mssql.
}

// SQLProvider yields a database/sql handle scoped to the namespace the
// engine is currently pointed at. All tenantdb engines implement it. The
// loader owns each returned handle and closes it after use.
type SQLProvider interface {
	SQLDB(ctx context.Context) (*sql.DB, error)
}

// Loader populates freshly created tenants: it loads the application
// schema from a structure dump or by running goose migrations, and
// optionally executes a seed file. It plugs into the adapter as its
// SchemaImporter and Seeder.
//
// Loading runs on a connection scoped to the active tenant, so the
// loader must only be invoked while the target tenant is switched in,
// which is exactly how the adapter drives it during create.
type Loader struct {
	cfg Config
	db  SQLProvider
	log logger
}

// New builds a loader. log may be nil when migration output is not
// wanted anywhere.
func New(cfg Config, provider SQLProvider, log logger) (*Loader, error) {
	if provider == nil {
		return nil, errors.Join(ErrFailedToLoadSchema, errors.New("sql provider is required"))
	}
	switch cfg.Dialect {
	case "postgres", "mysql", "mssql":
	case "":
		cfg.Dialect = "postgres"
	default:
		return nil, errors.Join(ErrFailedToLoadSchema, fmt.Errorf("unsupported dialect %q", cfg.Dialect))
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Loader{cfg: cfg, db: provider, log: log}, nil
}

// ImportSchema loads the application schema into the active tenant. A
// configured structure file wins over migrations; with neither source
// configured the import fails rather than silently producing an empty
// tenant.
func (l *Loader) ImportSchema(ctx context.Context, tenant string) error {
	switch {
	case l.cfg.StructureFile != "":
		return l.loadStructure(ctx, tenant)
	case l.cfg.MigrationsPath != "":
		return l.migrate(ctx, tenant)
	default:
		return ErrNoSchemaSource
	}
}

// SeedData executes the configured seed file inside the active tenant.
// Without a seed file it is a no-op. Seed statements report nothing on
// success; failures carry the statement position.
func (l *Loader) SeedData(ctx context.Context, tenant string) error {
	if l.cfg.SeedFile == "" {
		return nil
	}
	if err := l.executeFile(ctx, l.cfg.SeedFile); err != nil {
		return errors.Join(ErrFailedToSeed, err)
	}
	l.log.DebugContext(ctx, "seeded tenant", "tenant", tenant, "file", l.cfg.SeedFile)
	return nil
}

// loadStructure replays the structure dump statement by statement.
func (l *Loader) loadStructure(ctx context.Context, tenant string) error {
	if err := l.executeFile(ctx, l.cfg.StructureFile); err != nil {
		return errors.Join(ErrFailedToLoadSchema, err)
	}
	l.log.InfoContext(ctx, "loaded schema structure", "tenant", tenant, "file", l.cfg.StructureFile)
	return nil
}

func (l *Loader) executeFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	db, err := l.db.SQLDB(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.log.ErrorContext(ctx, "failed to close database connection", "error", err)
		}
	}()

	for i, stmt := range splitStatements(string(raw)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d of %s: %w", i+1, path, err)
		}
	}
	return nil
}
