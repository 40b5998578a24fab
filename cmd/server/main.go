package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-storeinfo/internal/api"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/config"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/metrics"
)

func newLogger(cfg *config.ServerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment", "err", err)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	sinks := storeinfo.MultiEventSink{metrics.NewEventSink(nil)}
	if cfg.EnableEventLogging {
		sinks = append(sinks, storeinfo.NewLoggingEventSink(logger))
	}

	ctx := context.Background()
	svc, cleanup, err := cfg.BuildService(ctx, logger, storeinfo.WithEventSink(sinks))
	if err != nil {
		logger.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", promhttp.Handler())

	storeHandler := api.NewStoreHandler(svc, logger)
	server.R.Route("/api/v1", func(r chi.Router) {
		r.Use(api.CORS(cfg.CORSAllowedOrigins))
		r.Mount("/", storeHandler.Routes())
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           server.R,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("storeinfo server starting", "port", cfg.Port, "env", cfg.Environment, "catalog", cfg.CatalogType())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
	}
}
