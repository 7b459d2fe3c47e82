// 文件路径: internal/api/middleware/security.go
// 模块说明: 请求体大小限制。
package middleware

import "net/http"

const defaultMaxBodyBytes = 10 * 1024 * 1024

// BodyLimitConfig 请求体大小限制配置
type BodyLimitConfig struct {
	MaxBytes  int64    // 最大字节数
	SkipPaths []string // 跳过的路径
}

// BodyLimit 请求体大小限制中间件
func BodyLimit(config BodyLimitConfig) func(http.Handler) http.Handler {
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaultMaxBodyBytes
	}
	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipPaths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !skipPaths[r.URL.Path] && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, config.MaxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
