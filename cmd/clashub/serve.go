package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Zhousiru/clashub/internal/api"
	"github.com/Zhousiru/clashub/internal/bootstrap"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/service"
	"github.com/Zhousiru/clashub/internal/support/i18n"
	"github.com/Zhousiru/clashub/internal/support/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Clashub console",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:     cfg.Log.SlogLevel(),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	}).With("version", Version)

	kvStore, closer, err := bootstrap.OpenKV(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := repository.NewKVStore(kvStore, repository.WithLogger(logger))

	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	authService := service.NewAuthService(store.Tokens(), logger)
	relayService := service.NewRelayService(store.ProxyProviders(), store.Fetchers(), service.RelayOptions{
		UserAgent:      cfg.Relay.UserAgent,
		ClientIPHeader: cfg.Relay.ClientIPHeader,
		Client:         &http.Client{Timeout: cfg.HTTP.WriteTimeout},
		Logger:         logger,
		Registerer:     registry,
		Namespace:      cfg.Metrics.Namespace,
	})

	i18nManager, err := i18n.NewManager(
		i18n.WithLogger(logger),
		i18n.WithDefaultLang(cfg.UI.DefaultLang),
	)
	if err != nil {
		return err
	}

	if configured, err := authService.HasToken(ctx); err != nil {
		logger.Warn("token lookup failed", "error", err)
	} else if !configured {
		logger.Info("no access token yet, open /login to set one")
	}

	router, err := api.NewRouter(
		logger,
		api.Services{
			Auth:  authService,
			Store: store,
			Relay: relayService,
			I18n:  i18nManager,
		},
		cfg.Metrics,
		api.WithRegistry(registry),
		api.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		api.WithSession(cfg.Session),
		api.WithTitle(cfg.UI.Title),
	)
	if err != nil {
		return err
	}

	server := bootstrap.NewHTTPServer(cfg.HTTP, router)

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr, "env", cfg.Log.Environment, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
