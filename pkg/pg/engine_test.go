package pg_test

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/pg"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to database isolation", func(t *testing.T) {
		t.Parallel()

		engine, err := pg.New(pg.Config{})
		require.NoError(t, err)
		assert.Equal(t, pg.Databases, engine.Mode())
	})

	t.Run("accepts schema isolation", func(t *testing.T) {
		t.Parallel()

		engine, err := pg.New(pg.Config{Mode: pg.Schemas})
		require.NoError(t, err)
		assert.Equal(t, pg.Schemas, engine.Mode())
	})

	t.Run("rejects unknown modes", func(t *testing.T) {
		t.Parallel()

		_, err := pg.New(pg.Config{Mode: "tablespaces"})
		assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
	})
}

func TestEngine_Statements(t *testing.T) {
	t.Parallel()

	t.Run("schema mode switches search_path", func(t *testing.T) {
		t.Parallel()

		engine, err := pg.New(pg.Config{Mode: pg.Schemas})
		require.NoError(t, err)

		stmt, ok := engine.SwitchStatement("acme")
		require.True(t, ok)
		assert.Equal(t, `SET search_path TO "acme"`, stmt)
	})

	t.Run("persistent schemas ride along in the search_path", func(t *testing.T) {
		t.Parallel()

		engine, err := pg.New(pg.Config{
			Mode:              pg.Schemas,
			PersistentSchemas: []string{"shared_extensions", "audit"},
		})
		require.NoError(t, err)

		stmt, ok := engine.SwitchStatement("acme")
		require.True(t, ok)
		assert.Equal(t, `SET search_path TO "acme", "shared_extensions", "audit"`, stmt)
	})

	t.Run("database mode has no in-place switch", func(t *testing.T) {
		t.Parallel()

		engine, err := pg.New(pg.Config{Mode: pg.Databases})
		require.NoError(t, err)

		_, ok := engine.SwitchStatement("acme")
		assert.False(t, ok)
	})

	t.Run("drop statements follow the mode", func(t *testing.T) {
		t.Parallel()

		schemas, err := pg.New(pg.Config{Mode: pg.Schemas})
		require.NoError(t, err)
		assert.Equal(t, `DROP SCHEMA "acme" CASCADE`, schemas.DropStatement("acme"))

		databases, err := pg.New(pg.Config{Mode: pg.Databases})
		require.NoError(t, err)
		assert.Equal(t, `DROP DATABASE "acme"`, databases.DropStatement("acme"))
	})

	t.Run("identifiers are quoted against injection", func(t *testing.T) {
		t.Parallel()

		engine, err := pg.New(pg.Config{Mode: pg.Schemas})
		require.NoError(t, err)

		stmt, ok := engine.SwitchStatement(`bad"name`)
		require.True(t, ok)
		assert.Equal(t, `SET search_path TO "bad""name"`, stmt)
	})
}

func TestEngine_ErrorClassification(t *testing.T) {
	t.Parallel()

	engine, err := pg.New(pg.Config{})
	require.NoError(t, err)

	t.Run("namespace errors are invalid statements", func(t *testing.T) {
		t.Parallel()

		for _, code := range []string{"3D000", "3F000", "42P04", "42P06", "42601", "42501"} {
			pgErr := &pgconn.PgError{Code: code}
			assert.True(t, engine.InvalidStatement(pgErr), code)
			assert.True(t, engine.InvalidStatement(fmt.Errorf("exec: %w", pgErr)), "wrapped "+code)
		}
	})

	t.Run("other sqlstates are not", func(t *testing.T) {
		t.Parallel()

		assert.False(t, engine.InvalidStatement(&pgconn.PgError{Code: "23505"}))
		assert.False(t, engine.InvalidStatement(errors.New("not a pg error")))
		assert.False(t, engine.InvalidStatement(nil))
	})

	t.Run("connection failures", func(t *testing.T) {
		t.Parallel()

		assert.True(t, engine.ConnectionFailure(&net.OpError{Op: "dial", Err: errors.New("refused")}))
		assert.True(t, engine.ConnectionFailure(&pgconn.PgError{Code: "08006"}))
		assert.True(t, engine.ConnectionFailure(fmt.Errorf("dial: %w", pg.ErrFailedToOpenDBConnection)))
		assert.True(t, engine.ConnectionFailure(pg.ErrNoActiveConnection))
		assert.False(t, engine.ConnectionFailure(&pgconn.PgError{Code: "3D000"}))
		assert.False(t, engine.ConnectionFailure(nil))
	})
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("query: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))
	assert.False(t, pg.IsNotFoundError(nil))
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "3D000"}))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}
