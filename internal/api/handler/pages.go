// 文件路径: internal/api/handler/pages.go
// 模块说明: 登录、登出、设置等页面流程。表单错误以横幅展示，不会返回空白页。
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Zhousiru/clashub/internal/api/requestctx"
	"github.com/Zhousiru/clashub/internal/auth/session"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/service"
)

// PageOptions configures NewPageHandler.
type PageOptions struct {
	// CookieMaxAge is the session cookie lifetime in seconds.
	CookieMaxAge int
	Logger       *slog.Logger
	// NewID proposes ids for add forms. Defaults to the first block of a random UUID.
	NewID func() string
}

// PageHandler serves the HTML console.
type PageHandler struct {
	auth         service.AuthService
	store        repository.Store
	renderer     *Renderer
	cookieMaxAge int
	logger       *slog.Logger
	newID        func() string
}

type loginView struct {
	Setup bool
}

// NewPageHandler wires the auth service, repositories and renderer.
func NewPageHandler(auth service.AuthService, store repository.Store, renderer *Renderer, opts PageOptions) *PageHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CookieMaxAge <= 0 {
		opts.CookieMaxAge = session.DefaultMaxAge
	}
	if opts.NewID == nil {
		opts.NewID = func() string {
			return uuid.NewString()[:8]
		}
	}
	return &PageHandler{
		auth:         auth,
		store:        store,
		renderer:     renderer,
		cookieMaxAge: opts.CookieMaxAge,
		logger:       opts.Logger,
		newID:        opts.NewID,
	}
}

// Index redirects to the providers page.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/proxy-providers", http.StatusFound)
}

// LoginForm expects the Optional guard upstream.
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	status := requestctx.AuthStatusFromContext(r.Context())
	if status.IsAuthenticated {
		http.Redirect(w, r, "/proxy-providers", http.StatusFound)
		return
	}
	setup := r.URL.Query().Get("setup") == "true"
	if status.NeedsSetup && !setup {
		http.Redirect(w, r, "/login?setup=true", http.StatusFound)
		return
	}
	var flash Flash
	if r.URL.Query().Get("error") == "invalid" {
		flash.Error = h.t(r, "flash.invalid_session")
	}
	h.renderLogin(w, r, http.StatusOK, setup, flash)
}

// Login verifies or initializes the token, then issues the session cookie.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, false, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
		return
	}
	token := r.PostForm.Get("token")
	setup := r.PostForm.Get("setup") == "true"

	if len(token) < service.MinTokenLength {
		h.renderLogin(w, r, http.StatusOK, setup, Flash{Error: h.t(r, "flash.token_too_short")})
		return
	}

	if setup {
		err := h.auth.InitializeToken(r.Context(), token)
		switch {
		case errors.Is(err, service.ErrAlreadyInitialized):
			h.renderLogin(w, r, http.StatusOK, false, Flash{Error: h.t(r, "flash.already_initialized")})
			return
		case err != nil:
			h.logger.Error("initialize token failed", "error", err)
			h.renderLogin(w, r, http.StatusOK, setup, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
			return
		}
	} else if !h.auth.VerifyToken(r.Context(), token) {
		h.renderLogin(w, r, http.StatusOK, false, Flash{Error: h.t(r, "flash.wrong_token")})
		return
	}

	w.Header().Add("Set-Cookie", session.MakeSessionCookie(token, h.cookieMaxAge))
	http.Redirect(w, r, "/proxy-providers", http.StatusFound)
}

// Logout clears the cookie on GET and POST alike.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Set-Cookie", session.MakeClearCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}

// SettingsForm expects the RequirePage guard upstream.
func (h *PageHandler) SettingsForm(w http.ResponseWriter, r *http.Request) {
	var flash Flash
	if r.URL.Query().Get("success") == "1" {
		flash.Success = h.t(r, "flash.token_changed")
	}
	h.renderSettings(w, r, flash)
}

// ChangeToken handles the change-password form. The logged-in token acts as the current token.
func (h *PageHandler) ChangeToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("action") != "change-password" {
		h.renderSettings(w, r, Flash{Error: h.t(r, "flash.invalid_action")})
		return
	}
	current := requestctx.TokenFromContext(r.Context())
	next := r.PostForm.Get("newToken")
	confirm := r.PostForm.Get("confirmToken")

	var problem string
	switch {
	case next == "" || confirm == "":
		problem = "flash.all_fields"
	case len(next) < service.MinTokenLength:
		problem = "flash.new_token_too_short"
	case next != confirm:
		problem = "flash.token_mismatch"
	case next == current:
		problem = "flash.token_unchanged"
	}
	if problem != "" {
		h.renderSettings(w, r, Flash{Error: h.t(r, problem)})
		return
	}

	if err := h.auth.ChangeToken(r.Context(), current, next); err != nil {
		h.logger.Warn("change token failed", "error", err)
		h.renderSettings(w, r, Flash{Error: h.t(r, "flash.change_failed", err.Error())})
		return
	}
	h.logger.Info("access token changed")
	w.Header().Add("Set-Cookie", session.MakeSessionCookie(next, h.cookieMaxAge))
	http.Redirect(w, r, "/settings?success=1", http.StatusFound)
}

func (h *PageHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, setup bool, flash Flash) {
	titleKey := "login.title"
	if setup {
		titleKey = "login.setup_title"
	}
	h.renderer.render(w, r, status, page{Name: "login", TitleKey: titleKey, Flash: flash, Data: loginView{Setup: setup}})
}

func (h *PageHandler) renderSettings(w http.ResponseWriter, r *http.Request, flash Flash) {
	h.renderer.render(w, r, http.StatusOK, page{Name: "settings", Active: "settings", TitleKey: "settings.title", Flash: flash})
}

func (h *PageHandler) t(r *http.Request, key string, args ...any) string {
	return h.renderer.i18n.Translate(requestctx.GetLanguage(r.Context()), key, args...)
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostForm.Get(key))
}
