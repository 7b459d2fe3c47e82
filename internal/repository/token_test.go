package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhousiru/clashub/internal/kv"
)

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	tokens := store.Tokens()

	has, err := tokens.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	ok, err := tokens.Verify(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok, "empty candidate must not match an absent token")

	require.NoError(t, tokens.Set(ctx, "secret1"))
	has, err = tokens.Has(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	ok, err = tokens.Verify(ctx, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tokens.Verify(ctx, "Secret1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCorruptReadsAbsent(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	require.NoError(t, backend.Put(ctx, kv.KeyAuthToken, "garbage"))

	_, ok, err := store.Tokens().Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
