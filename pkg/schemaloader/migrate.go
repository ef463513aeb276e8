package schemaloader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
)

// migrate brings the active tenant's schema up to date by applying goose
// migrations through a database/sql bridge scoped to that tenant.
func (l *Loader) migrate(ctx context.Context, tenant string) error {
	if _, err := os.Stat(l.cfg.MigrationsPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db, err := l.db.SQLDB(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.log.ErrorContext(ctx, "failed to close database connection", "error", err)
		}
	}()

	// Route goose migration logs through application logger instead of stdout.
	goose.SetLogger(newSlogAdapter(l.log))
	goose.SetTableName(l.cfg.MigrationsTable)

	if err := goose.SetDialect(l.cfg.Dialect); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.UpContext(ctx, db, l.cfg.MigrationsPath); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	l.log.InfoContext(ctx, "applied migrations", "tenant", tenant, "path", l.cfg.MigrationsPath)
	return nil
}

// migrateSlogAdapter bridges goose's Printf-style logging to structured logging.
// Maps goose's Fatalf to ErrorContext and Printf to InfoContext for consistency.
type migrateSlogAdapter struct {
	log logger
}

func newSlogAdapter(log logger) goose.Logger {
	return &migrateSlogAdapter{
		log: log,
	}
}

func (a *migrateSlogAdapter) Fatalf(format string, v ...any) {
	a.log.ErrorContext(context.Background(), fmt.Sprintf(format, v...))
}

func (a *migrateSlogAdapter) Printf(format string, v ...any) {
	a.log.InfoContext(context.Background(), fmt.Sprintf(format, v...))
}
