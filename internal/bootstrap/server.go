package bootstrap

import (
	"net/http"

	"github.com/Zhousiru/clashub/internal/config"
)

// NewHTTPServer constructs a baseline http.Server with conservative defaults.
// WriteTimeout also bounds outbound relay requests, which inherit the inbound context.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
}
