// 文件路径: internal/auth/session/session.go
// 模块说明: 从请求中提取 token（cookie / query）以及生成登录、登出 cookie，全部为纯函数。
package session

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// CookieName is the name of the session cookie carrying the shared token.
	CookieName = "token"
	// QueryParam is the query parameter API callers use to pass the token.
	QueryParam = "token"
	// DefaultMaxAge is thirty days, in seconds.
	DefaultMaxAge = 60 * 60 * 24 * 30
)

// ExtractFromCookie parses a Cookie header and returns the raw value of the token pair.
// Values are returned verbatim; no URL decoding is applied.
func ExtractFromCookie(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	var token string
	found := false
	for _, pair := range strings.Split(header, ";") {
		key, value, _ := strings.Cut(strings.TrimSpace(pair), "=")
		if key == CookieName {
			token, found = value, true
		}
	}
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// ExtractFromQuery returns the token query parameter.
func ExtractFromQuery(values url.Values) (string, bool) {
	token := values.Get(QueryParam)
	return token, token != ""
}

// FromRequest prefers the query parameter over the cookie so bookmarked links override the
// browser session.
func FromRequest(r *http.Request) (string, bool) {
	if token, ok := ExtractFromQuery(r.URL.Query()); ok {
		return token, true
	}
	return ExtractFromCookie(r.Header.Get("Cookie"))
}

// MakeSessionCookie renders the Set-Cookie header value issued on login.
func MakeSessionCookie(token string, maxAgeSeconds int) string {
	if maxAgeSeconds <= 0 {
		maxAgeSeconds = DefaultMaxAge
	}
	return CookieName + "=" + token + "; HttpOnly; Path=/; Max-Age=" + strconv.Itoa(maxAgeSeconds) + "; SameSite=Strict"
}

// MakeClearCookie renders a Set-Cookie header value that expires the session immediately.
func MakeClearCookie() string {
	return CookieName + "=; HttpOnly; Path=/; Max-Age=0; SameSite=Strict"
}
