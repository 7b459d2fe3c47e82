// 文件路径: internal/api/handler/api.go
// 模块说明: /api/v1 只读接口与透传代理接口，错误统一映射为纯文本响应。
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/service"
)

// APIHandler serves the token-guarded /api/v1 endpoints.
type APIHandler struct {
	configs repository.ConfigRepository
	relay   *service.RelayService
	logger  *slog.Logger
}

// NewAPIHandler wires the config repository and relay service.
func NewAPIHandler(configs repository.ConfigRepository, relay *service.RelayService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{configs: configs, relay: relay, logger: logger}
}

type apiFunc func(w http.ResponseWriter, r *http.Request) error

// wrap maps handler errors onto status codes. HTTPError values pass through unchanged.
func (h *APIHandler) wrap(endpoint string, fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var httpErr *HTTPError
		var upstreamErr *service.UpstreamError
		var connErr *service.ConnectionError
		switch {
		case errors.As(err, &httpErr):
			respondText(w, httpErr.Status, httpErr.Message)
		case errors.As(err, &upstreamErr):
			respondText(w, http.StatusBadGateway, upstreamErr.Error())
		case errors.As(err, &connErr):
			h.logger.Warn("upstream connection failed", "endpoint", endpoint, "target", connErr.Target, "error", connErr.Err)
			respondText(w, http.StatusBadGateway, "Bad gateway: "+connErr.Error())
		default:
			h.logger.Error("api request failed", "endpoint", endpoint, "path", r.URL.Path, "error", err)
			respondText(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
		}
	}
}

// ProxyProvider handles GET /api/v1/proxy-provider/{sourceId}.
func (h *APIHandler) ProxyProvider() http.HandlerFunc {
	return h.wrap("proxy-provider", func(w http.ResponseWriter, r *http.Request) error {
		sourceID := chi.URLParam(r, "sourceId")
		if sourceID == "" {
			return NewHTTPError(http.StatusBadRequest, "Source ID is required")
		}
		result, err := h.relay.FilterProvider(r.Context(), sourceID)
		if errors.Is(err, service.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Proxy Provider %q not found", sourceID)
		}
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("X-Source-Id", result.SourceID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Body)
		return nil
	})
}

// Config handles GET /api/v1/config/{configId}.
func (h *APIHandler) Config() http.HandlerFunc {
	return h.wrap("config", func(w http.ResponseWriter, r *http.Request) error {
		configID := chi.URLParam(r, "configId")
		if configID == "" {
			return NewHTTPError(http.StatusBadRequest, "Config ID is required")
		}
		cfg, err := h.configs.Get(r.Context(), configID)
		if errors.Is(err, repository.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Config %q not found", configID)
		}
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Header().Set("X-Config-Id", cfg.ID)
		w.Header().Set("X-Last-Modified", cfg.UpdatedAt.UTC().Format(repository.TimestampLayout))
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, cfg.Content)
		return nil
	})
}

// Fetcher relays any method on /api/v1/fetcher/{fetcherId} to the stored URL.
func (h *APIHandler) Fetcher() http.HandlerFunc {
	return h.wrap("fetcher", func(w http.ResponseWriter, r *http.Request) error {
		fetcherID := chi.URLParam(r, "fetcherId")
		if fetcherID == "" {
			return NewHTTPError(http.StatusBadRequest, "Fetcher ID is required")
		}
		relayed, err := h.relay.Forward(r.Context(), fetcherID, r)
		if errors.Is(err, service.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Fetcher %q not found", fetcherID)
		}
		if err != nil {
			return err
		}
		defer relayed.Body.Close()

		header := w.Header()
		for name, values := range relayed.Header {
			header[name] = values
		}
		header.Set("X-Fetcher-Id", relayed.FetcherID)
		header.Set("X-Target-Url", relayed.TargetURL)
		header.Set("X-Proxy-Status", strconv.Itoa(relayed.StatusCode))
		if relayed.StatusCode < 200 || relayed.StatusCode > 299 {
			header.Set("X-Proxy-Error", "upstream returned "+strconv.Itoa(relayed.StatusCode))
		}
		w.WriteHeader(relayed.StatusCode)
		if r.Method == http.MethodHead {
			return nil
		}
		if _, err := io.Copy(w, relayed.Body); err != nil {
			// headers are already sent; only log.
			h.logger.Warn("relay body copy interrupted", "fetcher_id", fetcherID, "error", err)
		}
		return nil
	})
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}
