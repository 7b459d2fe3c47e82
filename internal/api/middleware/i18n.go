package middleware

import (
	"net/http"
	"time"

	"github.com/Zhousiru/clashub/internal/api/requestctx"
	"github.com/Zhousiru/clashub/internal/support/i18n"
)

// LanguageCookie persists an explicit ?lang= choice.
const LanguageCookie = "lang"

// I18n detects the preferred language (?lang=, cookie, Accept-Language) and stores it in the context.
func I18n(manager *i18n.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queryLang := r.URL.Query().Get("lang")
			var cookieLang string
			if cookie, err := r.Cookie(LanguageCookie); err == nil {
				cookieLang = cookie.Value
			}
			lang := manager.Match(queryLang, cookieLang, r.Header.Get("Accept-Language"))

			if queryLang != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     LanguageCookie,
					Value:    lang,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(requestctx.WithLanguage(r.Context(), lang)))
		})
	}
}
