package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhousiru/clashub/internal/kv"
	"github.com/Zhousiru/clashub/internal/repository"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func newTestStore(t *testing.T) (*repository.KVStore, *kv.MemoryStore) {
	t.Helper()
	backend := kv.NewMemoryStore()
	clock := &fakeClock{current: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return repository.NewKVStore(backend, repository.WithClock(clock.Now)), backend
}

func TestCollectionSaveKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	providers := store.ProxyProviders()

	_, err := providers.Save(ctx, repository.ProxyProvider{ID: "alpha", SubscriptionURL: "https://a.example/sub"})
	require.NoError(t, err)
	_, err = providers.Save(ctx, repository.ProxyProvider{ID: "beta", SubscriptionURL: "https://b.example/sub"})
	require.NoError(t, err)

	list, err := providers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].ID)
	assert.Equal(t, "beta", list[1].ID)
}

func TestCollectionUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	configs := store.Configs()

	first, err := configs.Save(ctx, repository.Config{ID: "base", Content: "a: 1"})
	require.NoError(t, err)
	_, err = configs.Save(ctx, repository.Config{ID: "extra", Content: "b: 2"})
	require.NoError(t, err)

	updated, err := configs.Save(ctx, repository.Config{ID: "base", Content: "a: 2"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	list, err := configs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "base", list[0].ID)
	assert.Equal(t, "a: 2", list[0].Content)
	assert.Equal(t, first.CreatedAt, list[0].CreatedAt)
	assert.Equal(t, "extra", list[1].ID)
}

func TestCollectionIdenticalSaveRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.Fetchers().Save(ctx, repository.Fetcher{ID: "f1", URL: "https://example.com"})
	require.NoError(t, err)
	second, err := store.Fetchers().Save(ctx, repository.Fetcher{ID: "f1", URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestCollectionDelete(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	fetchers := store.Fetchers()

	_, err := fetchers.Save(ctx, repository.Fetcher{ID: "one", URL: "https://one.example"})
	require.NoError(t, err)
	_, err = fetchers.Save(ctx, repository.Fetcher{ID: "two", URL: "https://two.example"})
	require.NoError(t, err)
	before, _, err := backend.Get(ctx, kv.KeyFetchers)
	require.NoError(t, err)

	removed, err := fetchers.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	after, _, err := backend.Get(ctx, kv.KeyFetchers)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	removed, err = fetchers.Delete(ctx, "one")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err := fetchers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].ID)
}

func TestCollectionGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.ProxyProviders().Get(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.ProxyProviders().Save(ctx, repository.ProxyProvider{ID: "p", SubscriptionURL: "https://p.example"})
	require.NoError(t, err)
	got, err := store.ProxyProviders().Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "https://p.example", got.SubscriptionURL)
}

func TestCollectionCorruptValueReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	require.NoError(t, backend.Put(ctx, kv.KeyConfigs, "{not json"))

	list, err := store.Configs().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	saved, err := store.Configs().Save(ctx, repository.Config{ID: "fresh", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.ID)

	list, err = store.Configs().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCollectionReadsOriginalTimestampFormat(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	raw := `[{"id":"legacy","subscriptionUrl":"https://l.example","createdAt":"2024-05-01T08:00:00.000Z","updatedAt":"2024-05-02T08:00:00.000Z"}]`
	require.NoError(t, backend.Put(ctx, kv.KeyProxyProviders, raw))

	got, err := store.ProxyProviders().Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), got.CreatedAt)
}
