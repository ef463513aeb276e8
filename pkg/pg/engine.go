package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Engine drives PostgreSQL through a single pgx connection and
// implements tenant.Engine for both isolation modes.
//
// The engine deliberately holds one session rather than a pool: the
// active namespace is session state (search_path, current database), so
// a pool of connections would each point somewhere different. Run one
// engine per connection and pool at the adapter level if needed.
type Engine struct {
	cfg     Config
	conn    *pgx.Conn
	connCfg tenant.ConnectionConfig
}

// New creates an unconnected engine. The adapter opens the first
// connection during its own construction. An empty Mode means Databases,
// matching the routing layer's default when UseSchemas is unset.
func New(cfg Config) (*Engine, error) {
	switch cfg.Mode {
	case "":
		cfg.Mode = Databases
	case Schemas, Databases:
	default:
		return nil, errors.Join(ErrFailedToParseDBConfig, fmt.Errorf("unknown tenant mode %q", cfg.Mode))
	}
	return &Engine{cfg: cfg}, nil
}

// Mode reports the isolation mode the engine was built with.
func (e *Engine) Mode() Mode { return e.cfg.Mode }

// Conn exposes the active connection for application queries. The
// pointer changes after cross-database switches, so do not retain it
// across switch boundaries.
func (e *Engine) Conn() *pgx.Conn { return e.conn }

// SQLDB opens a database/sql handle scoped like the active connection,
// for tools that expect the standard interface, like goose. Under schema
// isolation the handle carries the current search_path as a startup
// parameter, so its connections land in the active tenant. The caller
// owns the handle and must close it.
func (e *Engine) SQLDB(ctx context.Context) (*sql.DB, error) {
	if e.conn == nil {
		return nil, ErrNoActiveConnection
	}
	cfg := e.conn.Config().Copy()
	if e.cfg.Mode == Schemas {
		namespace, err := e.CurrentNamespace(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.RuntimeParams == nil {
			cfg.RuntimeParams = make(map[string]string)
		}
		cfg.RuntimeParams["search_path"] = e.searchPath(namespace)
	}
	return stdlib.OpenDB(*cfg), nil
}

// Connect opens a new connection and makes it the active one. The
// previous connection is closed only after the new one is established,
// so a failed connect leaves the engine usable on its old target.
func (e *Engine) Connect(ctx context.Context, cfg tenant.ConnectionConfig) error {
	connCfg, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return errors.Join(ErrFailedToParseDBConfig, err)
	}
	if e.cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = e.cfg.ConnectTimeout
	}

	conn, err := dial(ctx, connCfg, e.cfg)
	if err != nil {
		return err
	}
	if e.conn != nil {
		_ = e.conn.Close(ctx)
	}
	e.conn = conn
	e.connCfg = cfg.Clone()
	return nil
}

// Close releases the active connection. Safe to call when none is open.
func (e *Engine) Close() error {
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close(context.Background())
	e.conn = nil
	return err
}

// Ping verifies the active connection is alive.
func (e *Engine) Ping(ctx context.Context) error {
	if e.conn == nil {
		return ErrNoActiveConnection
	}
	return e.conn.Ping(ctx)
}

// Execute runs a statement on the active connection.
func (e *Engine) Execute(ctx context.Context, stmt string) error {
	if e.conn == nil {
		return ErrNoActiveConnection
	}
	_, err := e.conn.Exec(ctx, stmt)
	return err
}

// CurrentNamespace reports the current schema or database, depending on
// the isolation mode.
func (e *Engine) CurrentNamespace(ctx context.Context) (string, error) {
	if e.conn == nil {
		return "", ErrNoActiveConnection
	}
	query := "SELECT current_database()"
	if e.cfg.Mode == Schemas {
		query = "SELECT COALESCE(current_schema(), '')"
	}
	var namespace string
	if err := e.conn.QueryRow(ctx, query).Scan(&namespace); err != nil {
		return "", err
	}
	return namespace, nil
}

// ConnectedHost reports the host of the active connection.
func (e *Engine) ConnectedHost() (string, error) {
	if e.conn == nil {
		return "", ErrNoActiveConnection
	}
	return e.connCfg.Host, nil
}

// CreateNamespace provisions a database or schema. In databases mode the
// create statement picks up encoding, lc_collate, lc_ctype, template and
// owner from cfg.Params.
func (e *Engine) CreateNamespace(ctx context.Context, name string, cfg tenant.ConnectionConfig) error {
	return e.Execute(ctx, e.createStatement(name, cfg))
}

func (e *Engine) createStatement(name string, cfg tenant.ConnectionConfig) string {
	if e.cfg.Mode == Schemas {
		return "CREATE SCHEMA " + quoteIdent(name)
	}

	var b strings.Builder
	b.WriteString("CREATE DATABASE ")
	b.WriteString(quoteIdent(name))
	if v, ok := cfg.Params["encoding"]; ok {
		b.WriteString(" ENCODING ")
		b.WriteString(quoteLiteral(v))
	}
	if v, ok := cfg.Params["lc_collate"]; ok {
		b.WriteString(" LC_COLLATE ")
		b.WriteString(quoteLiteral(v))
	}
	if v, ok := cfg.Params["lc_ctype"]; ok {
		b.WriteString(" LC_CTYPE ")
		b.WriteString(quoteLiteral(v))
	}
	if v, ok := cfg.Params["template"]; ok {
		b.WriteString(" TEMPLATE ")
		b.WriteString(quoteIdent(v))
	}
	if v, ok := cfg.Params["owner"]; ok {
		b.WriteString(" OWNER ")
		b.WriteString(quoteIdent(v))
	}
	return b.String()
}

// DropStatement renders the statement that removes a tenant. Schemas are
// dropped with CASCADE since a tenant schema is never empty.
func (e *Engine) DropStatement(name string) string {
	if e.cfg.Mode == Schemas {
		return "DROP SCHEMA " + quoteIdent(name) + " CASCADE"
	}
	return "DROP DATABASE " + quoteIdent(name)
}

// SwitchStatement renders the search_path switch in schemas mode. In
// databases mode there is no in-place switch: PostgreSQL cannot change
// databases on a live connection, so ok is false and every switch
// reconnects.
func (e *Engine) SwitchStatement(name string) (string, bool) {
	if e.cfg.Mode != Schemas {
		return "", false
	}
	return "SET search_path TO " + e.searchPath(name), true
}

// InvalidStatement reports PostgreSQL errors that indicate the statement
// targeted a namespace that does not exist, already exists, or is not
// accessible.
func (e *Engine) InvalidStatement(err error) bool {
	return isInvalidStatement(err)
}

// ConnectionFailure reports network and connection-level failures.
func (e *Engine) ConnectionFailure(err error) bool {
	return isConnectionFailure(err)
}

// searchPath renders the search_path value for a namespace with the
// configured persistent schemas appended.
func (e *Engine) searchPath(namespace string) string {
	parts := make([]string, 0, 1+len(e.cfg.PersistentSchemas))
	parts = append(parts, quoteIdent(namespace))
	for _, schema := range e.cfg.PersistentSchemas {
		parts = append(parts, quoteIdent(schema))
	}
	return strings.Join(parts, ", ")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
