// 文件路径: internal/repository/interfaces.go
// 模块说明: 仓储接口定义，服务层与 HTTP 层只依赖这里的抽象。
package repository

import "context"

// CollectionRepository is the typed CRUD contract for one collection key.
type CollectionRepository[T any] interface {
	// List returns the collection in insertion order. Absent or corrupt data reads as empty.
	List(ctx context.Context) ([]T, error)
	// Get returns the first record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*T, error)
	// Save upserts by id and returns the record with resolved timestamps.
	Save(ctx context.Context, record T) (T, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// ProxyProviderRepository stores subscription sources.
type ProxyProviderRepository = CollectionRepository[ProxyProvider]

// ConfigRepository stores YAML snippets.
type ConfigRepository = CollectionRepository[Config]

// FetcherRepository stores pass-through relay targets.
type FetcherRepository = CollectionRepository[Fetcher]

// TokenRepository manages the singleton AuthToken.
type TokenRepository interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Has(ctx context.Context) (bool, error)
	Verify(ctx context.Context, candidate string) (bool, error)
}

// Store exposes every repository backed by the same key-value store.
type Store interface {
	Tokens() TokenRepository
	ProxyProviders() ProxyProviderRepository
	Configs() ConfigRepository
	Fetchers() FetcherRepository
}
