// 文件路径: internal/api/router.go
// 模块说明: HTTP 路由装配：公共中间件、/api/v1 接口、页面路由与指标端点。
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zhousiru/clashub/internal/api/handler"
	"github.com/Zhousiru/clashub/internal/api/middleware"
	"github.com/Zhousiru/clashub/internal/config"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/service"
	"github.com/Zhousiru/clashub/internal/support/i18n"
)

// Services are the dependencies the router needs.
type Services struct {
	Auth  service.AuthService
	Store repository.Store
	Relay *service.RelayService
	I18n  *i18n.Manager
}

// RouterOption customizes NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	registry     *prometheus.Registry
	maxBodyBytes int64
	cookieMaxAge time.Duration
	title        string
	newID        func() string
}

// WithRegistry sets the registry used for HTTP metrics and the /metrics endpoint.
func WithRegistry(reg *prometheus.Registry) RouterOption {
	return func(o *routerOptions) {
		o.registry = reg
	}
}

// WithMaxBodyBytes caps inbound request bodies.
func WithMaxBodyBytes(n int64) RouterOption {
	return func(o *routerOptions) {
		o.maxBodyBytes = n
	}
}

// WithSession sets the session cookie lifetime.
func WithSession(cfg config.SessionConfig) RouterOption {
	return func(o *routerOptions) {
		o.cookieMaxAge = cfg.CookieMaxAge
	}
}

// WithTitle sets the console title.
func WithTitle(title string) RouterOption {
	return func(o *routerOptions) {
		if title != "" {
			o.title = title
		}
	}
}

// WithIDGenerator overrides the id suggested in add forms (tests).
func WithIDGenerator(fn func() string) RouterOption {
	return func(o *routerOptions) {
		o.newID = fn
	}
}

// NewRouter wires middleware, API routes and console pages.
func NewRouter(logger *slog.Logger, services Services, metricsCfg config.MetricsConfig, opts ...RouterOption) (http.Handler, error) {
	if services.Auth == nil || services.Store == nil || services.Relay == nil || services.I18n == nil {
		panic("router requires Auth, Store, Relay and I18n")
	}
	options := routerOptions{title: "Clashub"}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := handler.NewRenderer(services.I18n, options.title, logger)
	if err != nil {
		return nil, err
	}
	pages := handler.NewPageHandler(services.Auth, services.Store, renderer, handler.PageOptions{
		CookieMaxAge: int(options.cookieMaxAge / time.Second),
		Logger:       logger,
		NewID:        options.newID,
	})
	apiHandler := handler.NewAPIHandler(services.Store.Configs(), services.Relay, logger)

	var metricsHandler http.Handler
	r := chi.NewRouter()
	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	if metricsCfg.Enabled {
		reg := options.registry
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		mCfg := middleware.DefaultMetricsConfig()
		if metricsCfg.Namespace != "" {
			mCfg.Namespace = metricsCfg.Namespace
		}
		if metricsCfg.Subsystem != "" {
			mCfg.Subsystem = metricsCfg.Subsystem
		}
		if len(metricsCfg.Buckets) > 0 {
			mCfg.Buckets = metricsCfg.Buckets
		}
		r.Use(middleware.NewMetrics(reg, mCfg).Middleware())
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		if metricsCfg.Token != "" {
			metricsHandler = middleware.MetricsGuard(metricsCfg.Token)(metricsHandler)
		}
	}

	r.Use(
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/healthz", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		middleware.BodyLimit(middleware.BodyLimitConfig{MaxBytes: options.maxBodyBytes}),
		middleware.I18n(services.I18n),
	)

	r.Get("/healthz", handler.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	registerAPIRoutes(r, services.Auth, apiHandler)
	registerPageRoutes(r, services.Auth, pages, logger)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		http.NotFound(w, req)
	})

	return r, nil
}

func registerAPIRoutes(root chi.Router, auth service.AuthService, api *handler.APIHandler) {
	root.Route("/api/v1", func(v1 chi.Router) {
		// 只读接口上的非 GET 请求在鉴权之前直接返回 405。
		v1.MethodNotAllowed(handler.MethodNotAllowed)
		v1.Group(func(guarded chi.Router) {
			guarded.Use(middleware.RequireAPI(auth))
			guarded.Get("/proxy-provider/{sourceId}", api.ProxyProvider())
			guarded.Get("/config/{configId}", api.Config())
			guarded.Handle("/fetcher/{fetcherId}", api.Fetcher())
		})
	})
}

func registerPageRoutes(root chi.Router, auth service.AuthService, pages *handler.PageHandler, logger *slog.Logger) {
	root.Group(func(html chi.Router) {
		// 只压缩页面；透传代理的响应头需原样保留。
		html.Use(chiMiddleware.Compress(5))
		html.Get("/", pages.Index)
		html.HandleFunc("/logout", pages.Logout)

		html.Group(func(public chi.Router) {
			public.Use(middleware.Optional(auth, logger))
			public.Get("/login", pages.LoginForm)
			public.Post("/login", pages.Login)
		})

		html.Group(func(private chi.Router) {
			private.Use(middleware.RequirePage(auth, logger))
			private.Get("/proxy-providers", pages.ProxyProvidersPage)
			private.Post("/proxy-providers", pages.ProxyProvidersAction)
			private.Get("/configs", pages.ConfigsPage)
			private.Post("/configs", pages.ConfigsAction)
			private.Get("/fetchers", pages.FetchersPage)
			private.Post("/fetchers", pages.FetchersAction)
			private.Get("/settings", pages.SettingsForm)
			private.Post("/settings", pages.ChangeToken)
		})
	})
}
