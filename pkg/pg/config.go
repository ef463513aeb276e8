package pg

import "time"

// Mode selects how tenants are isolated on the PostgreSQL side.
type Mode string

const (
	// Schemas keeps all tenants in one database, one schema each, and
	// switches by moving search_path.
	Schemas Mode = "schemas"

	// Databases gives every tenant its own database. PostgreSQL has no
	// statement to change databases on a live connection, so every
	// switch is a reconnect. This is the default.
	Databases Mode = "databases"
)

type Config struct {
	Mode Mode `env:"PG_TENANT_MODE" envDefault:"databases"` // Mode selects schema-per-tenant or database-per-tenant isolation; it must agree with tenant.Config.UseSchemas.

	ConnectTimeout time.Duration `env:"PG_CONNECT_TIMEOUT" envDefault:"10s"` // ConnectTimeout bounds each connection attempt.
	RetryAttempts  int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval  time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the interval between retry attempts. It should be in the format "5s" for 5 seconds.

	// PersistentSchemas are appended to search_path on every switch, so
	// shared schemas (extensions, shared lookup tables) stay visible from
	// inside any tenant. Schemas mode only.
	PersistentSchemas []string `env:"PG_PERSISTENT_SCHEMAS" envSeparator:","`
}
