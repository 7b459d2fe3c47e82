// 文件路径: internal/repository/collection.go
// 模块说明: 单个 KV 键下的 JSON 数组集合，提供按 id upsert / 删除的通用实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zhousiru/clashub/internal/kv"
)

// collection persists every element of one entity kind as a single JSON array.
//
// Save and Delete perform a full read followed by a full write. Two writers racing on the
// same key can lose an update; the last Put wins.
type collection[T any, P record[T]] struct {
	store  kv.Store
	key    string
	now    func() time.Time
	logger *slog.Logger
}

func newCollection[T any, P record[T]](store kv.Store, key string, now func() time.Time, logger *slog.Logger) *collection[T, P] {
	return &collection[T, P]{store: store, key: key, now: now, logger: logger}
}

func (c *collection[T, P]) List(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("collection is not valid json, treating as empty", "key", c.key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *collection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if P(&items[i]).recordID() == id {
			found := items[i]
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (c *collection[T, P]) Save(ctx context.Context, item T) (T, error) {
	items, err := c.List(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	id := P(&item).recordID()
	now := c.now().UTC().Truncate(time.Millisecond)

	existing := -1
	for i := range items {
		if P(&items[i]).recordID() == id {
			existing = i
			break
		}
	}
	if existing >= 0 {
		P(&item).setTimestamps(P(&items[existing]).createdAt(), now)
		items[existing] = item
	} else {
		P(&item).setTimestamps(now, now)
		items = append(items, item)
	}

	if err := c.write(ctx, items); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

func (c *collection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	items, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]T, 0, len(items))
	for i := range items {
		if P(&items[i]).recordID() != id {
			kept = append(kept, items[i])
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if err := c.write(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (c *collection[T, P]) write(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Put(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}
