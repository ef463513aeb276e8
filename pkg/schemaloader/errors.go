package schemaloader

import "errors"

var (
	ErrNoSchemaSource          = errors.New("no schema source configured, set a structure file or migrations path")
	ErrFailedToLoadSchema      = errors.New("failed to load schema")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound   = errors.New("migrations directory not found")
	ErrFailedToSeed            = errors.New("failed to seed data")
)
