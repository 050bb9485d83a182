// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercw/state"
)

func TestBackends(t *testing.T) {
	for _, backend := range []string{MemoryBackend, PebbleBackend, SQLiteBackend} {
		t.Run(backend, func(t *testing.T) {
			require := require.New(t)

			cfg := NewDefaultConfig()
			cfg.Backend = backend
			db, err := New(cfg, t.TempDir(), metrics.NewPrefixGatherer())
			require.NoError(err)
			defer db.Close()

			k := []byte{0x3, 0x1, 'a'}
			_, err = db.Get(k)
			require.ErrorIs(err, database.ErrNotFound)
			has, err := db.Has(k)
			require.NoError(err)
			require.False(has)

			require.NoError(db.Put(k, []byte("one")))
			require.NoError(db.Put(k, []byte("two")))
			v, err := db.Get(k)
			require.NoError(err)
			require.Equal([]byte("two"), v)
			has, err = db.Has(k)
			require.NoError(err)
			require.True(has)

			require.NoError(db.Delete(k))
			_, err = db.Get(k)
			require.ErrorIs(err, database.ErrNotFound)

			// Deleting a missing key is not an error.
			require.NoError(db.Delete(k))
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	require := require.New(t)

	_, err := New(Config{Backend: "leveldb"}, t.TempDir(), metrics.NewPrefixGatherer())
	require.ErrorIs(err, ErrUnknownBackend)
}

func TestSQLitePersists(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()
	cfg := Config{Backend: SQLiteBackend}

	db, err := New(cfg, dir, metrics.NewPrefixGatherer())
	require.NoError(err)
	item := state.NewItem[int32]("count")
	require.NoError(item.Save(ctx, state.NewDatabaseMutable(db), 42))
	require.NoError(db.Close())

	db, err = New(cfg, dir, metrics.NewPrefixGatherer())
	require.NoError(err)
	defer db.Close()
	v, err := item.Load(ctx, state.NewDatabaseMutable(db))
	require.NoError(err)
	require.Equal(int32(42), v)
}

func TestCacheCommitOnBackends(t *testing.T) {
	for _, backend := range []string{MemoryBackend, PebbleBackend, SQLiteBackend} {
		t.Run(backend, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			cfg := NewDefaultConfig()
			cfg.Backend = backend
			db, err := New(cfg, t.TempDir(), metrics.NewPrefixGatherer())
			require.NoError(err)
			defer db.Close()
			require.NoError(db.Put([]byte("stale"), []byte("x")))

			cache := state.NewCache(state.NewDatabaseMutable(db))
			require.NoError(cache.Insert(ctx, []byte("a"), []byte("1")))
			require.NoError(cache.Insert(ctx, []byte("a"), []byte("2")))
			require.NoError(cache.Insert(ctx, []byte("empty"), nil))
			require.NoError(cache.Remove(ctx, []byte("stale")))
			require.NoError(cache.Commit(ctx))

			v, err := db.Get([]byte("a"))
			require.NoError(err)
			require.Equal([]byte("2"), v)
			has, err := db.Has([]byte("empty"))
			require.NoError(err)
			require.True(has)
			_, err = db.Get([]byte("stale"))
			require.ErrorIs(err, database.ErrNotFound)
		})
	}
}
