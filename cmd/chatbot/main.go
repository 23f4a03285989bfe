// Command chatbot runs the conversational backend: REST and websocket chat,
// the outlet directory and the product catalog behind one HTTP listener.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/config"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/dialogue"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/httpapi"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/logging"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/observability"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/outlets"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/products"
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		zap.NewExample().Fatal("logger init failed", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := outlets.NewStore(initCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("outlet directory ready", zap.Bool("postgres", cfg.DatabaseURL != ""))

	catalog := products.NewCatalog()

	ctrl := dialogue.NewController(dialogue.Options{
		MaxTurns:       cfg.MaxTurns,
		ContextWindow:  cfg.ContextWindow,
		Logger:         logger.Named("dialogue"),
		Metrics:        metrics,
		SearchOutlets:  httpapi.OutletSearcher(store),
		SearchProducts: httpapi.ProductSearcher(catalog),
	})

	api := httpapi.New(httpapi.Options{
		Logger:         logger.Named("http"),
		Metrics:        metrics,
		Controller:     ctrl,
		Store:          store,
		Catalog:        catalog,
		MaxMessageLen:  cfg.MaxMessageLen,
		MaxQueryLen:    cfg.MaxQueryLen,
		AllowAnyOrigin: cfg.AllowAnyOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.BindAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
		return err
	}
	logger.Info("stopped", zap.Int("active_sessions", ctrl.ActiveSessions()))
	return nil
}
