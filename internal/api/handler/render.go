// 文件路径: internal/api/handler/render.go
// 模块说明: 服务端页面渲染。模板内嵌，每个页面与 layout 组合成独立的模板集合。
package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Zhousiru/clashub/internal/api/requestctx"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/support/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "collection", "configs", "settings"}

// bannerPolicy strips all markup from flash messages; they often echo user input or upstream errors.
var bannerPolicy = sync.OnceValue(bluemonday.StrictPolicy)

// Renderer renders the console pages.
type Renderer struct {
	pages  map[string]*template.Template
	i18n   *i18n.Manager
	title  string
	logger *slog.Logger
}

// Flash is the success/error banner pair shown above page content.
type Flash struct {
	Success string
	Error   string
}

type page struct {
	Name     string
	Active   string
	TitleKey string
	Flash    Flash
	Data     any
}

type view struct {
	Title         string
	PageTitle     string
	Lang          string
	Languages     []string
	Active        string
	Authenticated bool
	BaseURL       string
	Path          string
	Flash         Flash
	Data          any
	translate     func(key string, args ...any) string
}

// T translates key for the request language.
func (v view) T(key string, args ...any) string {
	return v.translate(key, args...)
}

// NewRenderer parses every embedded page against the shared layout.
func NewRenderer(manager *i18n.Manager, title string, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	funcs := template.FuncMap{
		"banner": func(msg string) template.HTML {
			// StrictPolicy output is tag-free and already escaped.
			return template.HTML(bannerPolicy().Sanitize(msg))
		},
		"timestamp": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.UTC().Format(repository.TimestampLayout)
		},
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames)), i18n: manager, title: title, logger: logger}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) render(w http.ResponseWriter, req *http.Request, status int, p page) {
	tmpl, ok := r.pages[p.Name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	lang := requestctx.GetLanguage(req.Context())
	v := view{
		Title:         r.title,
		Lang:          lang,
		Languages:     r.i18n.Languages(),
		Active:        p.Active,
		Authenticated: requestctx.TokenFromContext(req.Context()) != "",
		BaseURL:       requestBaseURL(req),
		Path:          req.URL.Path,
		Flash:         p.Flash,
		Data:          p.Data,
		translate: func(key string, args ...any) string {
			return r.i18n.Translate(lang, key, args...)
		},
	}
	v.PageTitle = v.T(p.TitleKey)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		r.logger.Error("render page failed", "page", p.Name, "error", err)
		http.Error(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	} else if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host
}
