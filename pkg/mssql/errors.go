package mssql

import (
	"database/sql/driver"
	"errors"
	"net"

	mssqldb "github.com/denisenkom/go-mssqldb"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrNoActiveConnection       = errors.New("no active db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
)

// invalidStatementCodes are the SQL Server error numbers raised when a
// statement targets a database that is missing, duplicated, or off
// limits. These are the errors tenant routing translates into domain
// errors.
var invalidStatementCodes = map[int32]bool{
	102:   true, // incorrect syntax
	911:   true, // database does not exist
	1801:  true, // database already exists
	4060:  true, // cannot open database requested by the login
	18456: true, // login failed, raised when connecting straight into a missing database
}

func isInvalidStatement(err error) bool {
	if err == nil {
		return false
	}
	var mssqlErr mssqldb.Error
	return errors.As(err, &mssqlErr) && invalidStatementCodes[mssqlErr.Number]
}

func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, ErrFailedToOpenDBConnection) || errors.Is(err, ErrNoActiveConnection)
}

// IsDuplicateKeyError detects SQL Server unique constraint violations
// (errors 2601 and 2627).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var mssqlErr mssqldb.Error
	return errors.As(err, &mssqlErr) && (mssqlErr.Number == 2601 || mssqlErr.Number == 2627)
}
