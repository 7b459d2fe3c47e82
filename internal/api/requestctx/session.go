// 文件路径: internal/api/requestctx/session.go
// 模块说明: 在 context 中传递语言、已校验的令牌与可选登录状态。
package requestctx

import "context"

// AuthStatus is the result of the optional guard.
type AuthStatus struct {
	IsAuthenticated bool
	Token           string
	NeedsSetup      bool
}

type contextKey string

const (
	languageContextKey contextKey = "clashub-lang"
	tokenContextKey    contextKey = "clashub-token"
	statusContextKey   contextKey = "clashub-auth-status"
)

const defaultLanguage = "zh-CN"

// WithLanguage 将语言标识附加到 context 中供下游使用。
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageContextKey, lang)
}

// GetLanguage 从 context 中获取语言标识，若未设置则返回 zh-CN。
func GetLanguage(ctx context.Context) string {
	if ctx == nil {
		return defaultLanguage
	}
	if lang, ok := ctx.Value(languageContextKey).(string); ok && lang != "" {
		return lang
	}
	return defaultLanguage
}

// WithToken stores the token the page guard verified.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the verified token, empty when the page guard did not run.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// WithAuthStatus attaches the optional guard result.
func WithAuthStatus(ctx context.Context, status AuthStatus) context.Context {
	return context.WithValue(ctx, statusContextKey, status)
}

// AuthStatusFromContext returns the optional guard result or the zero value.
func AuthStatusFromContext(ctx context.Context) AuthStatus {
	if ctx == nil {
		return AuthStatus{}
	}
	status, _ := ctx.Value(statusContextKey).(AuthStatus)
	return status
}
