package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zhousiru/clashub/internal/kv"
)

type tokenRepo struct {
	store  kv.Store
	now    func() time.Time
	logger *slog.Logger
}

// Get returns the stored token. A corrupt singleton reads as absent.
func (r *tokenRepo) Get(ctx context.Context) (string, bool, error) {
	raw, ok, err := r.store.Get(ctx, kv.KeyAuthToken)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", kv.KeyAuthToken, err)
	}
	if !ok || raw == "" {
		return "", false, nil
	}
	var stored AuthToken
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		r.logger.Warn("auth token is not valid json, treating as absent", "error", err)
		return "", false, nil
	}
	return stored.Token, true, nil
}

// Set replaces the singleton with a fresh createdAt.
func (r *tokenRepo) Set(ctx context.Context, token string) error {
	data, err := json.Marshal(AuthToken{
		Token:     token,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return fmt.Errorf("encode auth token: %w", err)
	}
	if err := r.store.Put(ctx, kv.KeyAuthToken, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", kv.KeyAuthToken, err)
	}
	return nil
}

func (r *tokenRepo) Has(ctx context.Context) (bool, error) {
	_, ok, err := r.Get(ctx)
	return ok, err
}

// Verify is exact string equality against the stored token.
func (r *tokenRepo) Verify(ctx context.Context, candidate string) (bool, error) {
	stored, ok, err := r.Get(ctx)
	if err != nil || !ok {
		return false, err
	}
	return stored == candidate, nil
}
