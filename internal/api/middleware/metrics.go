// 文件路径: internal/api/middleware/metrics.go
// 模块说明: Prometheus HTTP 指标。按 chi 路由模板打标签，记录 ID 不会进入标签值。
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig names the collectors and the paths left out of them.
type MetricsConfig struct {
	Namespace string
	Subsystem string
	SkipPaths []string
	Buckets   []float64
}

// DefaultMetricsConfig returns clashub_http_* collectors that skip probes and scrapes.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "clashub",
		Subsystem: "http",
		SkipPaths: []string{"/healthz", "/metrics"},
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics records request counts, latency and bytes per route.
type Metrics struct {
	skip     map[string]struct{}
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

// NewMetrics registers the HTTP collectors on reg.
func NewMetrics(reg prometheus.Registerer, cfg MetricsConfig) *Metrics {
	defaults := DefaultMetricsConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = defaults.Namespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = defaults.Subsystem
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = defaults.Buckets
	}
	if cfg.SkipPaths == nil {
		cfg.SkipPaths = defaults.SkipPaths
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	factory := promauto.With(reg)
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help}
	}

	return &Metrics{
		skip:     skip,
		requests: factory.NewCounterVec(opts("requests_total", "Total number of HTTP requests processed."), []string{"method", "route", "status"}),
		bytes:    factory.NewCounterVec(opts("response_bytes_total", "Response body bytes written, by console surface."), []string{"surface"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds.",
			Buckets:   cfg.Buckets,
		}, []string{"method", "route"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_in_flight",
			Help:      "Requests currently being served, by console surface.",
		}, []string{"surface"}),
	}
}

// Middleware observes every request not listed in SkipPaths.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := m.skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			surface := surfaceOf(r.URL.Path)
			gauge := m.inFlight.WithLabelValues(surface)
			gauge.Inc()
			defer gauge.Dec()

			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			m.bytes.WithLabelValues(surface).Add(float64(ww.BytesWritten()))
		})
	}
}

// surfaceOf splits traffic into the token API and the HTML console.
func surfaceOf(path string) string {
	if strings.HasPrefix(path, "/api/") {
		return "api"
	}
	return "page"
}

// routePattern labels by chi route pattern so record ids do not become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// MetricsGuard requires "Authorization: Bearer <token>".
func MetricsGuard(token string) func(http.Handler) http.Handler {
	expected := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
