package mysql

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// dial opens a database/sql pool and pins one session from it, retrying
// with linear backoff on transport failures. The pool is capped at a
// single connection so the pinned session is the only one that exists.
func dial(ctx context.Context, connCfg tenant.ConnectionConfig, cfg Config) (*sql.DB, *sql.Conn, error) {
	db, err := sql.Open("mysql", buildDSN(connCfg, cfg.ConnectTimeout))
	if err != nil {
		return nil, nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := range attempts {
		conn, err := db.Conn(ctx)
		if err == nil {
			if err = conn.PingContext(ctx); err == nil {
				return db, conn, nil
			}
			_ = conn.Close()
		}
		lastErr = err

		// The server answering with an error (unknown database, denied
		// access) will not change on retry; only transport-level failures
		// are worth waiting out.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		time.Sleep(time.Duration(i+1) * cfg.RetryInterval)
	}
	_ = db.Close()
	return nil, nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// buildDSN renders a go-sql-driver DSN from the tenant connection
// config. Params pass through as DSN parameters (charset, collation,
// tls), which also makes them available to CreateNamespace.
func buildDSN(cfg tenant.ConnectionConfig, timeout time.Duration) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host
	if cfg.Port > 0 {
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	mc.DBName = cfg.Database
	if timeout > 0 {
		mc.Timeout = timeout
	}
	for key, value := range cfg.Params {
		if mc.Params == nil {
			mc.Params = make(map[string]string, len(cfg.Params))
		}
		mc.Params[key] = value
	}
	return mc.FormatDSN()
}
