package mssql_test

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	mssqldb "github.com/denisenkom/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/mssql"
)

func TestEngine_Statements(t *testing.T) {
	t.Parallel()

	engine := mssql.New(mssql.Config{})

	t.Run("use statement switches in place", func(t *testing.T) {
		t.Parallel()

		stmt, ok := engine.SwitchStatement("acme")
		require.True(t, ok)
		assert.Equal(t, "USE [acme]", stmt)
	})

	t.Run("drop statement", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "DROP DATABASE [acme]", engine.DropStatement("acme"))
	})

	t.Run("identifiers are quoted against injection", func(t *testing.T) {
		t.Parallel()

		stmt, ok := engine.SwitchStatement("bad]name")
		require.True(t, ok)
		assert.Equal(t, "USE [bad]]name]", stmt)
	})
}

func TestEngine_ErrorClassification(t *testing.T) {
	t.Parallel()

	engine := mssql.New(mssql.Config{})

	t.Run("database errors are invalid statements", func(t *testing.T) {
		t.Parallel()

		for _, number := range []int32{102, 911, 1801, 4060, 18456} {
			mssqlErr := mssqldb.Error{Number: number}
			assert.True(t, engine.InvalidStatement(mssqlErr), number)
			assert.True(t, engine.InvalidStatement(fmt.Errorf("exec: %w", mssqlErr)), "wrapped %d", number)
		}
	})

	t.Run("other error numbers are not", func(t *testing.T) {
		t.Parallel()

		assert.False(t, engine.InvalidStatement(mssqldb.Error{Number: 2627}))
		assert.False(t, engine.InvalidStatement(errors.New("not a sqlserver error")))
		assert.False(t, engine.InvalidStatement(nil))
	})

	t.Run("connection failures", func(t *testing.T) {
		t.Parallel()

		assert.True(t, engine.ConnectionFailure(driver.ErrBadConn))
		assert.True(t, engine.ConnectionFailure(&net.OpError{Op: "dial", Err: errors.New("refused")}))
		assert.True(t, engine.ConnectionFailure(fmt.Errorf("dial: %w", mssql.ErrFailedToOpenDBConnection)))
		assert.True(t, engine.ConnectionFailure(mssql.ErrNoActiveConnection))
		assert.False(t, engine.ConnectionFailure(mssqldb.Error{Number: 4060}))
		assert.False(t, engine.ConnectionFailure(nil))
	})
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	assert.True(t, mssql.IsDuplicateKeyError(mssqldb.Error{Number: 2601}))
	assert.True(t, mssql.IsDuplicateKeyError(mssqldb.Error{Number: 2627}))
	assert.True(t, mssql.IsDuplicateKeyError(fmt.Errorf("insert: %w", mssqldb.Error{Number: 2627})))
	assert.False(t, mssql.IsDuplicateKeyError(mssqldb.Error{Number: 911}))
	assert.False(t, mssql.IsDuplicateKeyError(nil))
}
