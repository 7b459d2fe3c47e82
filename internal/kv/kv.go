// 文件路径: internal/kv/kv.go
// 模块说明: 最小化的键值存储接口，所有持久化数据都通过它读写。
package kv

import (
	"context"
	"errors"
)

// Store is the only persistence primitive the console relies on.
// Values are opaque strings; there is no listing, TTL or transaction support.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key, value string) error
}

// Storage keys used by the repository layer.
const (
	KeyAuthToken      = "auth:token"
	KeyProxyProviders = "proxy-providers"
	KeyConfigs        = "configs"
	KeyFetchers       = "fetchers"
)

// ErrEmptyKey is returned when a caller passes a blank key.
var ErrEmptyKey = errors.New("kv: key is required / 键不能为空")
