package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	lite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	file, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		lite.Close()
		file.Close()
	})
	return map[string]KV{"memory": NewMemory(), "sqlite": lite, "sqlite-file": file}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "profile/a")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, kv.Put(ctx, "profile/a", []byte(`{"v":1}`)))
			require.NoError(t, kv.Put(ctx, "profile/a", []byte(`{"v":2}`)))
			require.NoError(t, kv.Put(ctx, "profile/b", []byte(`{}`)))
			require.NoError(t, kv.Put(ctx, "run/x", []byte(`{}`)))

			v, err := kv.Get(ctx, "profile/a")
			require.NoError(t, err)
			assert.Equal(t, `{"v":2}`, string(v))

			keys, err := kv.List(ctx, "profile/")
			require.NoError(t, err)
			assert.Equal(t, []string{"profile/a", "profile/b"}, keys)

			require.NoError(t, kv.Delete(ctx, "profile/a"))
			_, err = kv.Get(ctx, "profile/a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'z'
	v, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestConnect(t *testing.T) {
	kv, err := Connect("memory", "", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Connect("sqlite", "", ":memory:")
	require.NoError(t, err)
	assert.NoError(t, kv.Close())

	_, err = Connect("redis", "", "")
	assert.Error(t, err)
}

// Runs against a real database when TEST_DATABASE_URL is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, db.Put(ctx, "test/pg", []byte("1")))
	v, err := db.Get(ctx, "test/pg")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
	require.NoError(t, db.Delete(ctx, "test/pg"))
}
