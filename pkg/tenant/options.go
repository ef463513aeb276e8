package tenant

import (
	"context"
	"log/slog"
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// WithQueryCache attaches a query cache. The adapter resets it on every
// switch and invalidates a tenant's entries when the tenant is dropped.
func WithQueryCache(cache QueryCache) Option {
	return func(a *Adapter) {
		a.cache = cache
	}
}

// WithSchemaImporter sets the importer that loads the application schema
// into freshly created tenants.
func WithSchemaImporter(importer SchemaImporter) Option {
	return func(a *Adapter) {
		a.importer = importer
	}
}

// WithSeeder sets the seeder run after schema import when
// Config.SeedAfterCreate is enabled.
func WithSeeder(seeder Seeder) Option {
	return func(a *Adapter) {
		a.seeder = seeder
	}
}

// WithProvisionLock serializes Create and Drop across processes,
// guarding against two instances provisioning the same tenant at once.
func WithProvisionLock(lock Locker) Option {
	return func(a *Adapter) {
		a.lock = lock
	}
}

// WithCallbacks installs lifecycle hooks.
func WithCallbacks(callbacks Callbacks) Option {
	return func(a *Adapter) {
		a.callbacks = callbacks
	}
}

type createSettings struct {
	params map[string]string
	setup  func(context.Context) error
}

// CreateOption configures a single Create call.
type CreateOption func(*createSettings)

func newCreateSettings(opts []CreateOption) createSettings {
	var settings createSettings
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// WithCreateParams merges creation parameters (encoding, collation,
// template) into the connection configuration passed to the engine.
func WithCreateParams(params map[string]string) CreateOption {
	return func(s *createSettings) {
		s.params = params
	}
}

// WithSetup runs fn inside the new tenant after schema import and
// seeding. A failing setup aborts Create.
func WithSetup(fn func(ctx context.Context) error) CreateOption {
	return func(s *createSettings) {
		s.setup = fn
	}
}
