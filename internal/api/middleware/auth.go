// 文件路径: internal/api/middleware/auth.go
// 模块说明: 三种访问守卫：页面强制登录、可选登录、API 查询参数令牌。
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Zhousiru/clashub/internal/api/requestctx"
	"github.com/Zhousiru/clashub/internal/auth/session"
	"github.com/Zhousiru/clashub/internal/service"
)

const (
	loginPath        = "/login"
	loginSetupPath   = "/login?setup=true"
	loginInvalidPath = "/login?error=invalid"
)

// RequirePage redirects to the login page unless a valid token arrives via query or cookie.
// The verified token is stored with requestctx.WithToken.
func RequirePage(auth service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasToken, err := auth.HasToken(r.Context())
			if err != nil {
				logger.Error("page guard: token lookup failed", "error", err)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			if !hasToken {
				http.Redirect(w, r, loginSetupPath, http.StatusFound)
				return
			}
			token, ok := session.FromRequest(r)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			if !auth.VerifyToken(r.Context(), token) {
				http.Redirect(w, r, loginInvalidPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithToken(r.Context(), token)))
		})
	}
}

// Optional never blocks; it records an AuthStatus. Lookup failures read as fully unauthenticated.
func Optional(auth service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var status requestctx.AuthStatus
			hasToken, err := auth.HasToken(r.Context())
			switch {
			case err != nil:
				logger.Warn("optional guard: token lookup failed", "error", err)
			case !hasToken:
				status.NeedsSetup = true
			default:
				if token, ok := session.FromRequest(r); ok && auth.VerifyToken(r.Context(), token) {
					status.IsAuthenticated = true
					status.Token = token
				}
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithAuthStatus(r.Context(), status)))
		})
	}
}

// RequireAPI accepts the token from the query string only; cookies are ignored.
func RequireAPI(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := session.ExtractFromQuery(r.URL.Query())
			if !ok {
				writeUnauthorized(w, "Unauthorized: Missing token")
				return
			}
			if !auth.VerifyToken(r.Context(), token) {
				writeUnauthorized(w, "Unauthorized: Invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(message))
}
