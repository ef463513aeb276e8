package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Engine drives MySQL through a single pinned database/sql connection
// and implements tenant.Engine. MySQL makes no distinction between
// databases and schemas, so one engine serves both isolation styles:
// tenants on the connected server are switched with USE, tenants on
// other servers by reconnecting.
//
// The engine pins one session instead of using the pool directly
// because USE is session state. A pooled connection that silently died
// and got replaced would come back pointing at the default database, so
// the session is held explicitly and its death surfaces as an error.
type Engine struct {
	cfg     Config
	db      *sql.DB
	conn    *sql.Conn
	connCfg tenant.ConnectionConfig
}

// New creates an unconnected engine. The adapter opens the first
// connection during its own construction.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Conn exposes the pinned session for application queries. The pointer
// changes after cross-server switches, so do not retain it across
// switch boundaries.
func (e *Engine) Conn() *sql.Conn { return e.conn }

// SQLDB opens a fresh database/sql handle targeting the namespace the
// engine is currently pointed at, for tools that manage their own
// connections, like goose. The caller owns the handle and must close it.
func (e *Engine) SQLDB(ctx context.Context) (*sql.DB, error) {
	if e.conn == nil {
		return nil, ErrNoActiveConnection
	}
	namespace, err := e.CurrentNamespace(ctx)
	if err != nil {
		return nil, err
	}
	cfg := e.connCfg.Clone()
	cfg.Database = namespace
	db, err := sql.Open("mysql", buildDSN(cfg, e.cfg.ConnectTimeout))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Connect opens a new pinned session and makes it the active one. The
// previous session is closed only after the new one is established, so
// a failed connect leaves the engine usable on its old target.
func (e *Engine) Connect(ctx context.Context, cfg tenant.ConnectionConfig) error {
	db, conn, err := dial(ctx, cfg, e.cfg)
	if err != nil {
		return err
	}
	e.closeActive()
	e.db = db
	e.conn = conn
	e.connCfg = cfg.Clone()
	return nil
}

// Close releases the active session. Safe to call when none is open.
func (e *Engine) Close() error {
	return e.closeActive()
}

// Ping verifies the pinned session is alive.
func (e *Engine) Ping(ctx context.Context) error {
	if e.conn == nil {
		return ErrNoActiveConnection
	}
	return e.conn.PingContext(ctx)
}

// Execute runs a statement on the pinned session.
func (e *Engine) Execute(ctx context.Context, stmt string) error {
	if e.conn == nil {
		return ErrNoActiveConnection
	}
	_, err := e.conn.ExecContext(ctx, stmt)
	return err
}

// CurrentNamespace reports the database the session is pointed at.
func (e *Engine) CurrentNamespace(ctx context.Context) (string, error) {
	if e.conn == nil {
		return "", ErrNoActiveConnection
	}
	var namespace sql.NullString
	if err := e.conn.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&namespace); err != nil {
		return "", err
	}
	return namespace.String, nil
}

// ConnectedHost reports the host of the active session.
func (e *Engine) ConnectedHost() (string, error) {
	if e.conn == nil {
		return "", ErrNoActiveConnection
	}
	return e.connCfg.Host, nil
}

// CreateNamespace provisions a database. Character set and collation are
// picked up from cfg.Params under "charset" and "collation", matching
// the connection parameters of the same names.
func (e *Engine) CreateNamespace(ctx context.Context, name string, cfg tenant.ConnectionConfig) error {
	return e.Execute(ctx, createStatement(name, cfg))
}

func createStatement(name string, cfg tenant.ConnectionConfig) string {
	var b strings.Builder
	b.WriteString("CREATE DATABASE ")
	b.WriteString(quoteIdent(name))
	if v, ok := cfg.Params["charset"]; ok {
		b.WriteString(" DEFAULT CHARACTER SET ")
		b.WriteString(v)
	}
	if v, ok := cfg.Params["collation"]; ok {
		b.WriteString(" DEFAULT COLLATE ")
		b.WriteString(v)
	}
	return b.String()
}

// DropStatement renders the statement that removes a tenant database.
func (e *Engine) DropStatement(name string) string {
	return "DROP DATABASE " + quoteIdent(name)
}

// SwitchStatement renders the USE statement that repoints the session.
func (e *Engine) SwitchStatement(name string) (string, bool) {
	return "USE " + quoteIdent(name), true
}

// InvalidStatement reports MySQL errors indicating the statement
// targeted a database that is missing, already present, or off limits.
func (e *Engine) InvalidStatement(err error) bool {
	return isInvalidStatement(err)
}

// ConnectionFailure reports network and connection-level failures.
func (e *Engine) ConnectionFailure(err error) bool {
	return isConnectionFailure(err)
}

func (e *Engine) closeActive() error {
	var firstErr error
	if e.conn != nil {
		firstErr = e.conn.Close()
		e.conn = nil
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.db = nil
	}
	return firstErr
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
