package pg

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrNoActiveConnection       = errors.New("no active db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
)

// invalidStatementCodes are the SQLSTATE codes raised when a statement
// targets a namespace that is missing, duplicated, or off limits. These
// are the errors tenant routing translates into domain errors.
var invalidStatementCodes = map[string]bool{
	"3D000": true, // invalid_catalog_name: database does not exist
	"3F000": true, // invalid_schema_name: schema does not exist
	"42P04": true, // duplicate_database
	"42P06": true, // duplicate_schema
	"42601": true, // syntax_error
	"42501": true, // insufficient_privilege
}

func isInvalidStatement(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && invalidStatementCodes[pgErr.Code]
}

func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// SQLSTATE class 08 covers connection exceptions raised server-side.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "08") {
		return true
	}
	return errors.Is(err, ErrFailedToOpenDBConnection) || errors.Is(err, ErrNoActiveConnection)
}

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found" handling across queries.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError detects PostgreSQL unique constraint violations (SQLSTATE 23505).
// Common in SaaS applications for email uniqueness, username conflicts, etc.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
