// 文件路径: internal/config/config.go
// 模块说明: 应用配置结构体，由 viper 从 config.yaml / 环境变量 / .env 中解析。
package config

import (
	"log/slog"
	"time"
)

// Config 汇总应用的全部配置。
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Session SessionConfig `mapstructure:"session"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	UI      UIConfig      `mapstructure:"ui"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	Environment string `mapstructure:"environment"`
}

// StoreConfig 选择 KV 驱动。driver 取值 sqlite 或 memory。
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// RelayConfig 控制出站请求的身份标识。
type RelayConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	ClientIPHeader string `mapstructure:"client_ip_header"`
}

// SessionConfig 定义登录 cookie 的有效期。
type SessionConfig struct {
	CookieMaxAge time.Duration `mapstructure:"cookie_max_age"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Token     string    `mapstructure:"token"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// UIConfig 定义页面标题与默认语言。
type UIConfig struct {
	Title       string `mapstructure:"title"`
	DefaultLang string `mapstructure:"default_lang"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
