package tenant

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config controls how the adapter isolates and names tenants.
//
// The zero value is not usable: at minimum Connection.Database must be
// set, since it names the default namespace every reset returns to.
type Config struct {
	// Connection is the default configuration. Tenant switches derive
	// their connections from it, and reset always returns to it.
	Connection ConnectionConfig `envPrefix:"TENANTDB_" yaml:"connection"`

	// UseSchemas selects schema-per-tenant isolation: tenants live as
	// namespaces inside the default database and switching repoints the
	// active connection with a statement. When false each tenant is a
	// separate database, reached by statement when it lives on the
	// default host and by reconnect when it does not.
	UseSchemas bool `env:"TENANTDB_USE_SCHEMAS" envDefault:"false" yaml:"use_schemas"`

	// DefaultNamespace is the namespace reset returns to under schema
	// isolation. Defaults to the database name, which suits MySQL where
	// database and schema are the same thing; PostgreSQL deployments
	// usually set "public".
	DefaultNamespace string `env:"TENANTDB_DEFAULT_NAMESPACE" yaml:"default_namespace"`

	// Environment tags tenant names with the deployment environment so
	// several environments can share one database server. Empty disables
	// qualification regardless of the policy flags.
	Environment string `env:"TENANTDB_ENVIRONMENT" yaml:"environment"`

	// PrependEnvironment qualifies tenant names as "{env}_{name}".
	PrependEnvironment bool `env:"TENANTDB_PREPEND_ENVIRONMENT" envDefault:"false" yaml:"prepend_environment"`

	// AppendEnvironment qualifies tenant names as "{name}_{env}". Mutually
	// exclusive with PrependEnvironment.
	AppendEnvironment bool `env:"TENANTDB_APPEND_ENVIRONMENT" envDefault:"false" yaml:"append_environment"`

	// SeedAfterCreate runs the configured seeder inside create, right
	// after the schema import.
	SeedAfterCreate bool `env:"TENANTDB_SEED_AFTER_CREATE" envDefault:"false" yaml:"seed_after_create"`

	// ExcludedTables names tables shared by all tenants. Under schema
	// isolation their qualified names stay pinned to the default
	// namespace so every tenant reads the same rows.
	ExcludedTables []string `env:"TENANTDB_EXCLUDED_TABLES" envSeparator:"," yaml:"excluded_tables"`

	// TenantsFile optionally points at a YAML file with per-tenant
	// connection overrides for tenants hosted away from the default
	// server. Only meaningful without UseSchemas.
	TenantsFile string `env:"TENANTDB_TENANTS_FILE" yaml:"-"`

	// Overrides holds the per-tenant connection overrides, keyed by raw
	// tenant name. Populated from TenantsFile by Load, or set directly.
	Overrides map[string]ConnectionConfig `env:"-" yaml:"-"`
}

// Validate reports configuration combinations the adapter cannot run with.
func (c Config) Validate() error {
	if c.Connection.Database == "" {
		return errors.Join(ErrInvalidConfig, errors.New("default database name is required"))
	}
	if c.PrependEnvironment && c.AppendEnvironment {
		return errors.Join(ErrInvalidConfig, errors.New("prepend and append environment policies are mutually exclusive"))
	}
	if (c.PrependEnvironment || c.AppendEnvironment) && c.Environment == "" {
		return errors.Join(ErrInvalidConfig, errors.New("environment tag is required when an environment policy is enabled"))
	}
	if c.UseSchemas && len(c.Overrides) > 0 {
		return errors.Join(ErrInvalidConfig, errors.New("per-tenant connection overrides require database isolation"))
	}
	return nil
}

// defaultNamespace resolves the namespace used as the no-tenant target
// under schema isolation.
func (c Config) defaultNamespace() string {
	if c.DefaultNamespace != "" {
		return c.DefaultNamespace
	}
	return c.Connection.Database
}

// Load reads configuration from the environment, loading .env first when
// present, and resolves the tenants file if one is configured.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if cfg.TenantsFile != "" {
		overrides, err := LoadOverrides(cfg.TenantsFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Overrides = overrides
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOverrides reads per-tenant connection overrides from a YAML file:
//
//	tenants:
//	  acme:
//	    host: db-acme.internal
//	    port: 5433
//
// Zero fields inherit from the default connection at switch time.
func LoadOverrides(path string) (map[string]ConnectionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("tenants file %q: %w", path, err))
	}
	var file struct {
		Tenants map[string]ConnectionConfig `yaml:"tenants"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("tenants file %q: %w", path, err))
	}
	return file.Tenants, nil
}
