// 文件路径: internal/repository/store.go
// 模块说明: 把四个仓储组装到同一个 KV 存储之上。
package repository

import (
	"log/slog"
	"time"

	"github.com/Zhousiru/clashub/internal/kv"
)

// KVStore wires every repository onto one kv.Store.
type KVStore struct {
	tokens    TokenRepository
	providers ProxyProviderRepository
	configs   ConfigRepository
	fetchers  FetcherRepository
}

// Option customizes NewKVStore.
type Option func(*storeOptions)

type storeOptions struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used to report corrupt collections.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewKVStore constructs the repositories on top of store.
func NewKVStore(store kv.Store, opts ...Option) *KVStore {
	o := storeOptions{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &KVStore{
		tokens:    &tokenRepo{store: store, now: o.now, logger: o.logger},
		providers: newCollection[ProxyProvider](store, kv.KeyProxyProviders, o.now, o.logger),
		configs:   newCollection[Config](store, kv.KeyConfigs, o.now, o.logger),
		fetchers:  newCollection[Fetcher](store, kv.KeyFetchers, o.now, o.logger),
	}
}

func (s *KVStore) Tokens() TokenRepository {
	return s.tokens
}

func (s *KVStore) ProxyProviders() ProxyProviderRepository {
	return s.providers
}

func (s *KVStore) Configs() ConfigRepository {
	return s.configs
}

func (s *KVStore) Fetchers() FetcherRepository {
	return s.fetchers
}
