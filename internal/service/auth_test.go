package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhousiru/clashub/internal/kv"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/service"
	"github.com/Zhousiru/clashub/internal/support/logging"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, assert.AnError
}

func (failingStore) Put(context.Context, string, string) error {
	return assert.AnError
}

func newAuth(t *testing.T) service.AuthService {
	t.Helper()
	store := repository.NewKVStore(kv.NewMemoryStore())
	return service.NewAuthService(store.Tokens(), logging.Discard())
}

func TestInitializeTokenOnlyOnce(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	has, err := auth.HasToken(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, auth.InitializeToken(ctx, "first-token"))
	assert.ErrorIs(t, auth.InitializeToken(ctx, "first-token"), service.ErrAlreadyInitialized)
	assert.ErrorIs(t, auth.InitializeToken(ctx, "another-token"), service.ErrAlreadyInitialized)

	assert.True(t, auth.VerifyToken(ctx, "first-token"))
	assert.False(t, auth.VerifyToken(ctx, "another-token"))
}

func TestInitializeTokenRejectsShortToken(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	assert.ErrorIs(t, auth.InitializeToken(ctx, "12345"), service.ErrInvalidToken)
	has, err := auth.HasToken(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestChangeToken(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)
	require.NoError(t, auth.InitializeToken(ctx, "original"))

	assert.ErrorIs(t, auth.ChangeToken(ctx, "wrong-current", "newtoken"), service.ErrInvalidCurrentToken)
	assert.True(t, auth.VerifyToken(ctx, "original"))

	assert.ErrorIs(t, auth.ChangeToken(ctx, "original", "short"), service.ErrInvalidToken)
	assert.True(t, auth.VerifyToken(ctx, "original"))

	require.NoError(t, auth.ChangeToken(ctx, "original", "longenough"))
	assert.True(t, auth.VerifyToken(ctx, "longenough"))
	assert.False(t, auth.VerifyToken(ctx, "original"))
}

func TestChangeTokenAllowsSameValue(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)
	require.NoError(t, auth.InitializeToken(ctx, "original"))

	require.NoError(t, auth.ChangeToken(ctx, "original", "original"))
	assert.True(t, auth.VerifyToken(ctx, "original"))
}

func TestVerifyTokenSwallowsStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := repository.NewKVStore(failingStore{})
	auth := service.NewAuthService(store.Tokens(), logging.Discard())

	assert.False(t, auth.VerifyToken(ctx, "anything"))
	assert.False(t, auth.VerifyToken(ctx, ""))

	_, err := auth.HasToken(ctx)
	assert.Error(t, err)
	assert.Error(t, auth.InitializeToken(ctx, "first-token"))
}
