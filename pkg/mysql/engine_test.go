package mysql_test

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/mysql"
)

func TestEngine_Statements(t *testing.T) {
	t.Parallel()

	engine := mysql.New(mysql.Config{})

	t.Run("use statement switches in place", func(t *testing.T) {
		t.Parallel()

		stmt, ok := engine.SwitchStatement("acme")
		require.True(t, ok)
		assert.Equal(t, "USE `acme`", stmt)
	})

	t.Run("drop statement", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "DROP DATABASE `acme`", engine.DropStatement("acme"))
	})

	t.Run("identifiers are quoted against injection", func(t *testing.T) {
		t.Parallel()

		stmt, ok := engine.SwitchStatement("bad`name")
		require.True(t, ok)
		assert.Equal(t, "USE `bad``name`", stmt)
	})
}

func TestEngine_ErrorClassification(t *testing.T) {
	t.Parallel()

	engine := mysql.New(mysql.Config{})

	t.Run("database errors are invalid statements", func(t *testing.T) {
		t.Parallel()

		for _, number := range []uint16{1007, 1008, 1044, 1049, 1064} {
			mysqlErr := &mysqldriver.MySQLError{Number: number}
			assert.True(t, engine.InvalidStatement(mysqlErr), number)
			assert.True(t, engine.InvalidStatement(fmt.Errorf("exec: %w", mysqlErr)), "wrapped %d", number)
		}
	})

	t.Run("other error numbers are not", func(t *testing.T) {
		t.Parallel()

		assert.False(t, engine.InvalidStatement(&mysqldriver.MySQLError{Number: 1062}))
		assert.False(t, engine.InvalidStatement(errors.New("not a mysql error")))
		assert.False(t, engine.InvalidStatement(nil))
	})

	t.Run("connection failures", func(t *testing.T) {
		t.Parallel()

		assert.True(t, engine.ConnectionFailure(driver.ErrBadConn))
		assert.True(t, engine.ConnectionFailure(mysqldriver.ErrInvalidConn))
		assert.True(t, engine.ConnectionFailure(&net.OpError{Op: "dial", Err: errors.New("refused")}))
		assert.True(t, engine.ConnectionFailure(fmt.Errorf("dial: %w", mysql.ErrFailedToOpenDBConnection)))
		assert.True(t, engine.ConnectionFailure(mysql.ErrNoActiveConnection))
		assert.False(t, engine.ConnectionFailure(&mysqldriver.MySQLError{Number: 1049}))
		assert.False(t, engine.ConnectionFailure(nil))
	})
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	assert.True(t, mysql.IsDuplicateKeyError(&mysqldriver.MySQLError{Number: 1062}))
	assert.True(t, mysql.IsDuplicateKeyError(fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062})))
	assert.False(t, mysql.IsDuplicateKeyError(&mysqldriver.MySQLError{Number: 1049}))
	assert.False(t, mysql.IsDuplicateKeyError(nil))
}
