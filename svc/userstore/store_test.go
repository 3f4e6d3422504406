package userstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		for _, dsn := range []string{"memory://", "memory", " MEMORY:// "} {
			backend, err := Open(ctx, dsn, Options{})
			require.NoError(t, err, dsn)
			assert.Equal(t, BackendMemory, backend.Name)
			assert.NoError(t, backend.Check(ctx))
			assert.NoError(t, backend.Close(ctx))
		}
	})

	t.Run("sqlite file scheme", func(t *testing.T) {
		t.Parallel()
		backend, err := Open(ctx, "file:"+t.TempDir()+"/users.db", Options{})
		require.NoError(t, err)
		defer backend.Close(ctx)

		assert.Equal(t, BackendSQLite, backend.Name)
		assert.NoError(t, backend.Check(ctx))
	})

	t.Run("sqlite migrations are idempotent", func(t *testing.T) {
		t.Parallel()
		dsn := "sqlite://" + t.TempDir() + "/users.db"

		first, err := Open(ctx, dsn, Options{})
		require.NoError(t, err)
		require.NoError(t, first.Close(ctx))

		second, err := Open(ctx, dsn, Options{})
		require.NoError(t, err)
		assert.NoError(t, second.Close(ctx))
	})

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()
		_, err := Open(ctx, "  ", Options{})
		assert.ErrorIs(t, err, ErrEmptyDSN)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		t.Parallel()
		_, err := Open(ctx, "mysql://localhost/users", Options{})
		assert.ErrorIs(t, err, ErrUnsupportedDSN)
	})
}
