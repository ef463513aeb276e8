package pg

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// dial establishes a PostgreSQL connection with retry logic so tenant
// reconnects survive transient network issues.
// Uses linear backoff to avoid overwhelming the database when multiple
// services restart simultaneously.
func dial(ctx context.Context, connCfg *pgx.ConnConfig, cfg Config) (*pgx.Conn, error) {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := range attempts {
		conn, err := pgx.ConnectConfig(ctx, connCfg)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		// The server answering with an error (unknown database, bad
		// credentials) will not change on retry; only transport-level
		// failures are worth waiting out.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		time.Sleep(time.Duration(i+1) * cfg.RetryInterval)
	}
	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// createParamKeys are creation-time settings carried in ConnectionConfig
// params. They configure CREATE DATABASE and must not leak into the
// connection string.
var createParamKeys = map[string]bool{
	"encoding":   true,
	"lc_collate": true,
	"lc_ctype":   true,
	"template":   true,
	"owner":      true,
}

// buildDSN renders a connection URL from the tenant connection config.
// Params pass through as query parameters (sslmode, application_name),
// except creation-time settings which only apply to CREATE DATABASE.
func buildDSN(cfg tenant.ConnectionConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Host,
		Path:   "/" + cfg.Database,
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
	for key, value := range cfg.Params {
		if createParamKeys[key] {
			continue
		}
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
