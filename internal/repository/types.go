// 文件路径: internal/repository/types.go
// 模块说明: 四类持久化记录的数据结构，JSON 字段名与 KV 中存储的格式保持一致。
package repository

import "time"

// TimestampLayout renders timestamps the way they are displayed and echoed in headers.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// AuthToken is the singleton shared secret. It is never deleted, only replaced.
type AuthToken struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProxyProvider points at a remote Clash subscription that is fetched and filtered on demand.
type ProxyProvider struct {
	ID              string    `json:"id"`
	SubscriptionURL string    `json:"subscriptionUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Config is a user edited text blob (usually YAML) served verbatim.
type Config struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fetcher is an arbitrary remote URL exposed through the pass-through relay.
type Fetcher struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// record is the pointer constraint shared by collection elements.
type record[T any] interface {
	*T
	recordID() string
	createdAt() time.Time
	setTimestamps(createdAt, updatedAt time.Time)
}

func (p *ProxyProvider) recordID() string { return p.ID }
func (p *ProxyProvider) createdAt() time.Time { return p.CreatedAt }
func (p *ProxyProvider) setTimestamps(c, u time.Time) {
	p.CreatedAt, p.UpdatedAt = c, u
}

func (c *Config) recordID() string { return c.ID }
func (c *Config) createdAt() time.Time { return c.CreatedAt }
func (c *Config) setTimestamps(cr, u time.Time) {
	c.CreatedAt, c.UpdatedAt = cr, u
}

func (f *Fetcher) recordID() string { return f.ID }
func (f *Fetcher) createdAt() time.Time { return f.CreatedAt }
func (f *Fetcher) setTimestamps(c, u time.Time) {
	f.CreatedAt, f.UpdatedAt = c, u
}
