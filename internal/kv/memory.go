package kv

import (
	"context"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store backed by go-cache with expiration disabled.
// Data is lost on restart; use it for development and tests.
type MemoryStore struct {
	backend *gocache.Cache
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{backend: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, ErrEmptyKey
	}
	raw, ok := s.backend.Get(key)
	if !ok {
		return "", false, nil
	}
	value, _ := raw.(string)
	return value, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	s.backend.Set(key, value, gocache.NoExpiration)
	return nil
}
