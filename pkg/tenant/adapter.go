package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// QueryCache is a cache of query results scoped to the active tenant.
// The adapter resets it on every successful switch so results never leak
// between tenants, and invalidates a tenant's entries when it is
// dropped.
type QueryCache interface {
	Reset()
	Invalidate(namespace string)
}

// SchemaImporter loads the application schema into a freshly created
// tenant. It runs inside create with the new tenant active.
type SchemaImporter interface {
	ImportSchema(ctx context.Context, tenant string) error
}

// Seeder populates a freshly created tenant with initial data. It runs
// inside create, after the schema import.
type Seeder interface {
	SeedData(ctx context.Context, tenant string) error
}

// Locker serializes tenant provisioning across processes. Acquire blocks
// until the named lock is held and returns its release function.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Callbacks hook into the tenant lifecycle. All receive the qualified
// tenant name; After hooks only fire when the operation succeeded.
type Callbacks struct {
	BeforeCreate func(ctx context.Context, tenant string)
	AfterCreate  func(ctx context.Context, tenant string)
	BeforeSwitch func(ctx context.Context, tenant string)
	AfterSwitch  func(ctx context.Context, tenant string)
}

// Adapter routes a database connection between tenants. It owns one
// Engine and one isolation strategy, selected by Config.UseSchemas, and
// keeps a single invariant: after any operation the connection points at
// a namespace that exists, falling back to the default connection when a
// tenant turns out not to.
//
// An Adapter is bound to one connection and is not safe for concurrent
// use. Serve concurrent workloads with one Adapter per connection, or
// scope requests with Process and the middleware.
type Adapter struct {
	engine   Engine
	cfg      Config
	strategy strategy
	resc     *translator
	qualify  func(string) string
	pinned   map[string]string

	log       *slog.Logger
	cache     QueryCache
	importer  SchemaImporter
	seeder    Seeder
	lock      Locker
	callbacks Callbacks
}

// New builds an adapter around engine and establishes the default
// connection. Under schema isolation the default namespace is captured
// from cfg.Connection.Database and activated immediately.
func New(ctx context.Context, engine Engine, cfg Config, opts ...Option) (*Adapter, error) {
	if engine == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("engine is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		engine:  engine,
		cfg:     cfg,
		qualify: newQualifier(cfg),
		pinned:  pinnedTables(cfg),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	resc := &translator{}
	if cfg.UseSchemas {
		a.strategy = newSchemaStrategy(engine, cfg, resc, a.log)
	} else {
		a.strategy = newDatabaseStrategy(engine, cfg, a.qualify, resc, a.log)
	}
	resc.matchers = append([]ErrorMatcher{engine.InvalidStatement}, a.strategy.extraRescuable()...)
	a.resc = resc

	if err := a.strategy.init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Qualify returns the environment-qualified form of a tenant name.
func (a *Adapter) Qualify(name string) string { return a.qualify(name) }

// Current reports the namespace the connection is pointed at right now,
// as seen by the database itself.
func (a *Adapter) Current(ctx context.Context) (string, error) {
	namespace, err := a.engine.CurrentNamespace(ctx)
	if err != nil {
		return "", fmt.Errorf("current tenant: %w", err)
	}
	return namespace, nil
}

// Switch points the connection at the named tenant until the next switch
// or reset. An empty name behaves like Reset. Switching to a tenant that
// does not exist returns ErrTenantNotFound with the connection restored
// to a safe target.
func (a *Adapter) Switch(ctx context.Context, name string) error {
	qualified := a.qualify(name)
	if qualified != "" {
		if err := ValidateIdentifier(qualified); err != nil {
			return err
		}
	}
	return a.switchTo(ctx, qualified)
}

// switchTo runs the switch pipeline on an already-qualified name. The
// query cache is reset and the after hook fired only once the strategy
// has actually moved the connection.
func (a *Adapter) switchTo(ctx context.Context, qualified string) error {
	if a.callbacks.BeforeSwitch != nil {
		a.callbacks.BeforeSwitch(ctx, qualified)
	}
	if err := a.strategy.connect(ctx, qualified); err != nil {
		return err
	}
	if a.cache != nil {
		a.cache.Reset()
	}
	if a.callbacks.AfterSwitch != nil {
		a.callbacks.AfterSwitch(ctx, qualified)
	}
	a.log.DebugContext(ctx, "switched tenant", slog.String("tenant", qualified))
	return nil
}

// Reset restores the default connection.
func (a *Adapter) Reset(ctx context.Context) error {
	return a.strategy.reset(ctx)
}

// Process runs fn with the named tenant active and guarantees the
// previous target is restored afterwards, whether the switch, fn, or the
// restore itself fails. A failed restore falls back to a hard reset; the
// error fn or the switch produced always wins over restore problems,
// which are only logged.
//
// fn receives a context annotated with the qualified tenant name.
func (a *Adapter) Process(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	previous, err := a.Current(ctx)
	if err != nil {
		return err
	}

	// The restore is deferred so it runs even when fn panics. previous is
	// a literal namespace observed on the connection, so it bypasses
	// qualification on the way back. The caller's context is often already
	// canceled by the time the restore fires, so it runs detached from it.
	defer func() {
		restoreCtx := context.WithoutCancel(ctx)
		if restoreErr := a.switchTo(restoreCtx, previous); restoreErr != nil {
			a.log.WarnContext(restoreCtx, "failed to restore previous tenant, resetting connection",
				slog.String("tenant", previous),
				slog.String("error", restoreErr.Error()))
			if resetErr := a.Reset(restoreCtx); resetErr != nil {
				a.log.ErrorContext(restoreCtx, "failed to reset connection after restore failure",
					slog.String("error", resetErr.Error()))
			}
		}
	}()

	if err := a.Switch(ctx, name); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return fn(WithTenant(ctx, a.qualify(name)))
}

// Each runs fn once per tenant inside Process, stopping at the first
// error.
func (a *Adapter) Each(ctx context.Context, tenants []string, fn func(ctx context.Context, tenant string) error) error {
	for _, name := range tenants {
		if err := a.Process(ctx, name, func(ctx context.Context) error {
			return fn(ctx, name)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Create provisions the named tenant: the database or schema is created,
// the schema importer and seeder run inside it, and any setup callback
// supplied through WithSetup runs last. The previous connection target
// is restored afterwards. Creating a tenant that already exists returns
// ErrTenantExists.
func (a *Adapter) Create(ctx context.Context, name string, opts ...CreateOption) error {
	settings := newCreateSettings(opts)
	qualified := a.qualify(name)
	if err := ValidateIdentifier(qualified); err != nil {
		return err
	}

	if a.lock != nil {
		release, err := a.lock.Acquire(ctx, "tenant:provision:"+qualified)
		if err != nil {
			return fmt.Errorf("acquire provisioning lock: %w", err)
		}
		defer release()
	}

	if a.callbacks.BeforeCreate != nil {
		a.callbacks.BeforeCreate(ctx, qualified)
	}

	cfg := a.cfg.Connection.Clone()
	for k, v := range settings.params {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string, len(settings.params))
		}
		cfg.Params[k] = v
	}
	if err := a.engine.CreateNamespace(ctx, qualified, cfg); err != nil {
		if a.resc.rescuable(err) {
			return alreadyExists(qualified, err)
		}
		return err
	}
	a.log.InfoContext(ctx, "created tenant", slog.String("tenant", qualified))

	err := a.Process(ctx, name, func(ctx context.Context) error {
		if a.importer != nil {
			if err := a.importer.ImportSchema(ctx, qualified); err != nil {
				return errors.Join(ErrSchemaImport, fmt.Errorf("tenant %q: %w", qualified, err))
			}
		}
		if a.cfg.SeedAfterCreate && a.seeder != nil {
			if err := a.seeder.SeedData(ctx, qualified); err != nil {
				return errors.Join(ErrSeedData, fmt.Errorf("tenant %q: %w", qualified, err))
			}
		}
		if settings.setup != nil {
			return settings.setup(ctx)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if a.callbacks.AfterCreate != nil {
		a.callbacks.AfterCreate(ctx, qualified)
	}
	return nil
}

// Drop removes the named tenant's database or schema. The connection
// target is left where it was; dropping the active tenant leaves the
// connection pointing at a namespace that no longer exists, so switch
// away first. Dropping a missing tenant returns ErrTenantNotFound.
func (a *Adapter) Drop(ctx context.Context, name string) error {
	qualified := a.qualify(name)
	if err := ValidateIdentifier(qualified); err != nil {
		return err
	}

	if a.lock != nil {
		release, err := a.lock.Acquire(ctx, "tenant:provision:"+qualified)
		if err != nil {
			return fmt.Errorf("acquire provisioning lock: %w", err)
		}
		defer release()
	}

	if err := a.engine.Execute(ctx, a.engine.DropStatement(qualified)); err != nil {
		if a.resc.rescuable(err) {
			return notFound(qualified, err)
		}
		return err
	}
	if a.cache != nil {
		a.cache.Invalidate(qualified)
	}
	a.log.InfoContext(ctx, "dropped tenant", slog.String("tenant", qualified))
	return nil
}

// PinnedTable reports the namespace-qualified name of a table shared
// across tenants. Under schema isolation excluded tables resolve to the
// default namespace no matter which tenant is active; ok is false for
// tables that follow the tenant.
func (a *Adapter) PinnedTable(table string) (string, bool) {
	qualified, ok := a.pinned[table]
	return qualified, ok
}

// Close releases the underlying connection.
func (a *Adapter) Close() error {
	return a.engine.Close()
}

// pinnedTables maps each excluded table to its default-namespace name.
// Entries may arrive already qualified; only the bare table name is kept.
func pinnedTables(cfg Config) map[string]string {
	if !cfg.UseSchemas || len(cfg.ExcludedTables) == 0 {
		return nil
	}
	defaultNS := cfg.defaultNamespace()
	pinned := make(map[string]string, len(cfg.ExcludedTables))
	for _, table := range cfg.ExcludedTables {
		name := table
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if name == "" {
			continue
		}
		pinned[name] = defaultNS + "." + name
	}
	return pinned
}
