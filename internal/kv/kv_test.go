package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/wordsync/internal/config"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(dir string) config.StoreConfig
		want    any
		wantErr bool
	}{
		{
			name: "file driver",
			cfg: func(dir string) config.StoreConfig {
				return config.StoreConfig{Driver: "file", Path: filepath.Join(dir, "store.yml")}
			},
			want: &FileStore{},
		},
		{
			name: "sqlite driver",
			cfg: func(dir string) config.StoreConfig {
				return config.StoreConfig{Driver: "sqlite", Path: filepath.Join(dir, "store.db")}
			},
			want: &SQLiteStore{},
		},
		{
			name: "unknown driver",
			cfg: func(dir string) config.StoreConfig {
				return config.StoreConfig{Driver: "leveldb", Path: dir}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(context.Background(), tt.cfg(t.TempDir()))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer got.Close()
			assert.IsType(t, tt.want, got)
		})
	}
}

// testStore runs the behavior shared by every backend.
func testStore(t *testing.T, open func(t *testing.T) Store, reopen func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		got, ok, err := store.Get(ctx, KeyTranslations)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("set then get and overwrite", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		require.NoError(t, store.Set(ctx, KeyLastSyncTime, []byte("2025-01-01T00:00:00Z")))
		require.NoError(t, store.Set(ctx, KeyLastSyncTime, []byte("2025-01-02T00:00:00Z")))

		got, ok, err := store.Get(ctx, KeyLastSyncTime)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2025-01-02T00:00:00Z", string(got))
	})

	t.Run("values survive reopening", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Set(ctx, KeyTranslations, []byte(`[{"word":"cat"}]`)))
		require.NoError(t, store.Close())

		reopened := reopen(t)
		defer reopened.Close()
		got, ok, err := reopened.Get(ctx, KeyTranslations)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `[{"word":"cat"}]`, string(got))
	})

	t.Run("closed store", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Close())

		_, _, err := store.Get(ctx, KeyTranslations)
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, store.Set(ctx, KeyTranslations, []byte("x")), ErrClosed)
	})
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.yml")
	open := func(t *testing.T) Store {
		require.NoError(t, os.RemoveAll(filepath.Dir(path)))
		store, err := OpenFileStore(path)
		require.NoError(t, err)
		return store
	}
	reopen := func(t *testing.T) Store {
		store, err := OpenFileStore(path)
		require.NoError(t, err)
		return store
	}
	testStore(t, open, reopen)
}

func TestOpenFileStore_InvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0644))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

func TestFileStore_WriteFailureKeepsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yml")
	store, err := OpenFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyLastSyncTime, []byte("first")))

	// A directory in place of the store file makes the rename fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "child"), nil, 0644))

	assert.Error(t, store.Set(ctx, KeyLastSyncTime, []byte("second")))

	got, ok, err := store.Get(ctx, KeyLastSyncTime)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", string(got))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	open := func(t *testing.T) Store {
		require.NoError(t, os.RemoveAll(filepath.Dir(path)))
		store, err := OpenSQLiteStore(context.Background(), path)
		require.NoError(t, err)
		return store
	}
	reopen := func(t *testing.T) Store {
		store, err := OpenSQLiteStore(context.Background(), path)
		require.NoError(t, err)
		return store
	}
	testStore(t, open, reopen)
}
