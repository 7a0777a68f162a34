package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func openBackends(t *testing.T) map[string]KV {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	bolt, err := OpenBolt(ctx, filepath.Join(dir, "test.bolt"))
	require.NoError(t, err)
	sqlite, err := OpenSQLite(ctx, filepath.Join(dir, "test.sqlite"))
	require.NoError(t, err)

	backends := map[string]KV{
		BackendBolt:   bolt,
		BackendSQLite: sqlite,
		BackendMemory: NewMemory(),
	}
	t.Cleanup(func() {
		for _, kv := range backends {
			kv.Close()
		}
	})
	return backends
}

func TestKV_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Load(ctx, "items")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Save(ctx, "items", []byte(`[1]`)))
			require.NoError(t, kv.Save(ctx, "items", []byte(`[1,2]`)))

			got, err := kv.Load(ctx, "items")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))
		})
	}
}

func TestOpenBolt_CreatesBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordspark.db")
	b, err := OpenBolt(context.Background(), path)
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	err = b.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketKV) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestBolt_ClosedStorage(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBolt(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Save(ctx, "k", []byte("v")), ErrStorageClosed)
	_, err = b.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrStorageClosed)
}

func TestBolt_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	b, err := OpenBolt(ctx, path)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, "lifetime", []byte(`{"sessions":3}`)))
	require.NoError(t, b.Close())

	b, err = OpenBolt(ctx, path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Load(ctx, "lifetime")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessions":3}`, string(got))
}

func TestSQLite_PragmasApplied(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "pragma.db"))
	require.NoError(t, err)
	defer s.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	kv, err := Open(context.Background(), "redis", "x")
	assert.Error(t, err)
	assert.Nil(t, kv)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", buf))
	buf[0] = 'x'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("WORDSPARK_DB", want)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Dir(want))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("WORDSPARK_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "wordspark", "wordspark.db"), got)
}
