package mysql

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrNoActiveConnection       = errors.New("no active db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
)

// invalidStatementCodes are the MySQL server error numbers raised when a
// statement targets a database that is missing, duplicated, or off
// limits. These are the errors tenant routing translates into domain
// errors.
var invalidStatementCodes = map[uint16]bool{
	1007: true, // ER_DB_CREATE_EXISTS: can't create database, it exists
	1008: true, // ER_DB_DROP_EXISTS: can't drop database, it does not exist
	1044: true, // ER_DBACCESS_DENIED_ERROR
	1049: true, // ER_BAD_DB_ERROR: unknown database
	1064: true, // ER_PARSE_ERROR
}

func isInvalidStatement(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && invalidStatementCodes[mysqlErr.Number]
}

func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, ErrFailedToOpenDBConnection) || errors.Is(err, ErrNoActiveConnection)
}

// IsDuplicateKeyError detects MySQL unique constraint violations (error 1062).
// Common in SaaS applications for email uniqueness, username conflicts, etc.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
