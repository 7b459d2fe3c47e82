package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhousiru/clashub/internal/bootstrap"
	"github.com/Zhousiru/clashub/internal/config"
	"github.com/Zhousiru/clashub/internal/kv"
	"github.com/Zhousiru/clashub/internal/support/logging"
)

func openStores(t *testing.T) map[string]kv.Store {
	t.Helper()
	sqliteStore, closer, err := bootstrap.OpenKV(config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "kv.db"),
	}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	return map[string]kv.Store{
		"memory": kv.NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStoreGetPut(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, kv.KeyConfigs)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Put(ctx, kv.KeyConfigs, "[]"))
			value, ok, err := store.Get(ctx, kv.KeyConfigs)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[]", value)

			require.NoError(t, store.Put(ctx, kv.KeyConfigs, `[{"id":"a"}]`))
			value, _, err = store.Get(ctx, kv.KeyConfigs)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"a"}]`, value)

			// empty values are still present
			require.NoError(t, store.Put(ctx, kv.KeyAuthToken, ""))
			value, ok, err = store.Get(ctx, kv.KeyAuthToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Empty(t, value)
		})
	}
}

func TestStoreRejectsBlankKey(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := store.Get(ctx, " ")
			assert.ErrorIs(t, err, kv.ErrEmptyKey)
			assert.ErrorIs(t, store.Put(ctx, "", "x"), kv.ErrEmptyKey)
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "nested", "kv.db")}

	store, closer, err := bootstrap.OpenKV(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, kv.KeyAuthToken, "secret-token"))
	require.NoError(t, closer.Close())

	store, closer, err = bootstrap.OpenKV(cfg, logging.Discard())
	require.NoError(t, err)
	defer closer.Close()
	value, ok, err := store.Get(ctx, kv.KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-token", value)
}

func TestOpenKVRejectsUnknownDriver(t *testing.T) {
	_, _, err := bootstrap.OpenKV(config.StoreConfig{Driver: "redis"}, logging.Discard())
	assert.Error(t, err)
}
