package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip exercises the Store contract shared by every backend.
func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.False(t, ok, "missing key must report absence")

	require.NoError(t, s.Set(ctx, KeyRefreshToken, "rt-1"))
	value, ok, err := s.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "rt-1", value)

	// Empty string is a real value, not absence.
	require.NoError(t, s.Set(ctx, KeyAuthUser, ""))
	value, ok, err = s.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", value)

	require.NoError(t, s.Set(ctx, KeyRefreshToken, "rt-2"))
	value, _, err = s.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", value)

	require.NoError(t, s.Delete(ctx, KeyRefreshToken))
	_, ok, err = s.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, KeyRefreshToken))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	roundTrip(t, s)
}

func TestSQLiteStore(t *testing.T) {
	t.Run("contract", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
		require.NoError(t, err)
		defer s.Close()
		roundTrip(t, s)
	})

	t.Run("values survive reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "session.db")

		s, err := NewSQLiteStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, KeyRefreshToken, "rt-durable"))
		require.NoError(t, s.Close())

		reopened, err := NewSQLiteStore(path)
		require.NoError(t, err)
		defer reopened.Close()

		value, ok, err := reopened.Get(ctx, KeyRefreshToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "rt-durable", value)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deeper", "session.db")
		s, err := NewSQLiteStore(path)
		require.NoError(t, err)
		defer s.Close()
		roundTrip(t, s)
	})
}

func TestOpen(t *testing.T) {
	t.Run("memory DSN", func(t *testing.T) {
		s, err := Open("memory:")
		require.NoError(t, err)
		defer s.Close()
		_, ok := s.(*MemoryStore)
		assert.True(t, ok)
	})

	t.Run("file path DSN", func(t *testing.T) {
		s, err := Open(filepath.Join(t.TempDir(), "session.db"))
		require.NoError(t, err)
		defer s.Close()
		_, ok := s.(*SQLiteStore)
		assert.True(t, ok)
	})
}
