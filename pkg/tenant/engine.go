package tenant

import "context"

// ConnectionConfig carries the parameters an engine needs to open a
// connection. Params holds driver-specific settings (sslmode, charset,
// pool sizes) that engines read by key.
type ConnectionConfig struct {
	Host     string            `env:"HOST" envDefault:"localhost" yaml:"host"`
	Port     int               `env:"PORT" yaml:"port"`
	User     string            `env:"USER" yaml:"user"`
	Password string            `env:"PASSWORD" yaml:"password"`
	Database string            `env:"DATABASE" yaml:"database"`
	Params   map[string]string `env:"PARAMS" yaml:"params"`
}

// Clone returns a deep copy so per-tenant merges never mutate the base
// configuration.
func (c ConnectionConfig) Clone() ConnectionConfig {
	clone := c
	if c.Params != nil {
		clone.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			clone.Params[k] = v
		}
	}
	return clone
}

// Merge overlays non-zero fields of other onto a copy of c. Params are
// merged key by key with other taking precedence.
func (c ConnectionConfig) Merge(other ConnectionConfig) ConnectionConfig {
	merged := c.Clone()
	if other.Host != "" {
		merged.Host = other.Host
	}
	if other.Port != 0 {
		merged.Port = other.Port
	}
	if other.User != "" {
		merged.User = other.User
	}
	if other.Password != "" {
		merged.Password = other.Password
	}
	if other.Database != "" {
		merged.Database = other.Database
	}
	for k, v := range other.Params {
		if merged.Params == nil {
			merged.Params = make(map[string]string, len(other.Params))
		}
		merged.Params[k] = v
	}
	return merged
}

// Engine is the database-facing half of the adapter. Implementations wrap
// a single driver (pgx, mysql, sqlserver) and expose the handful of
// operations tenant routing needs: opening and replacing the active
// connection, executing statements on it, and rendering or classifying
// the driver-specific pieces the routing strategies cannot know about.
//
// An Engine owns exactly one active connection (or pool) at a time.
// Connect replaces it; Close releases it. All other methods operate on
// whatever connection is currently active.
type Engine interface {
	// Connect opens a new connection described by cfg and makes it the
	// active one, closing the connection it replaces. A failed Connect
	// leaves the previous connection active.
	Connect(ctx context.Context, cfg ConnectionConfig) error

	// Close releases the active connection. Safe to call when none is open.
	Close() error

	// Ping verifies the active connection is alive.
	Ping(ctx context.Context) error

	// Execute runs a statement on the active connection and discards any
	// result rows.
	Execute(ctx context.Context, stmt string) error

	// CurrentNamespace reports the namespace (database or schema) the
	// active connection is pointed at.
	CurrentNamespace(ctx context.Context) (string, error)

	// ConnectedHost reports the host of the active connection. It returns
	// an error when no connection is open.
	ConnectedHost() (string, error)

	// CreateNamespace provisions a new namespace. cfg supplies creation
	// parameters (encoding, collation, template) through Params.
	CreateNamespace(ctx context.Context, name string, cfg ConnectionConfig) error

	// DropStatement renders the statement that removes the named namespace.
	DropStatement(name string) string

	// SwitchStatement renders the statement that repoints the active
	// connection at the named namespace without reconnecting. ok is false
	// when the engine has no such statement, in which case switching
	// always goes through Connect.
	SwitchStatement(name string) (stmt string, ok bool)

	// InvalidStatement reports whether err is the driver's class of
	// invalid-statement errors (unknown database, unknown schema, denied
	// access) that routing translates into domain errors.
	InvalidStatement(err error) bool

	// ConnectionFailure reports whether err is a driver-level connection
	// or network failure.
	ConnectionFailure(err error) bool
}
