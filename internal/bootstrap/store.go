// 文件路径: internal/bootstrap/store.go
// 模块说明: 根据配置选择 KV 驱动（sqlite 或 memory），并在需要时执行迁移。
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Zhousiru/clashub/internal/config"
	"github.com/Zhousiru/clashub/internal/kv"
	"github.com/Zhousiru/clashub/internal/migrations"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenKV builds the configured kv.Store. The returned closer releases the underlying handle.
func OpenKV(cfg config.StoreConfig, logger *slog.Logger) (kv.Store, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite":
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate kv schema: %w", err)
		}
		logger.Info("kv store ready", "driver", "sqlite", "path", cfg.Path)
		return kv.NewSQLiteStore(db), db, nil
	case "memory":
		logger.Warn("kv store is in-memory, data will not survive a restart", "driver", "memory")
		return kv.NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q / 不支持的存储驱动", cfg.Driver)
	}
}
