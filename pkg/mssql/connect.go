package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	mssqldb "github.com/denisenkom/go-mssqldb"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// dial opens a database/sql pool and pins one session from it, retrying
// with linear backoff on transport failures. The pool is capped at a
// single connection so the pinned session is the only one that exists.
func dial(ctx context.Context, connCfg tenant.ConnectionConfig, cfg Config) (*sql.DB, *sql.Conn, error) {
	db, err := sql.Open("sqlserver", buildDSN(connCfg, cfg.ConnectTimeout))
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

		// The server answering with an error (unknown database, failed
		// login) will not change on retry; only transport-level failures
		// are worth waiting out.
		var mssqlErr mssqldb.Error
		if errors.As(err, &mssqlErr) {
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

// buildDSN renders a sqlserver connection URL from the tenant connection
// config. Params pass through as query parameters (encrypt, app name).
func buildDSN(cfg tenant.ConnectionConfig, timeout time.Duration) string {
	u := url.URL{
		Scheme: "sqlserver",
		Host:   cfg.Host,
	}
	if cfg.Port > 0 {
		u.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	if cfg.User != "" {
		u.User = url.User(cfg.User)
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	if timeout > 0 {
		q.Set("dial timeout", fmt.Sprintf("%d", int(timeout.Seconds())))
	}
	for key, value := range cfg.Params {
		if key == "collation" {
			continue
		}
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
