// Package main is the entry point for the stock ledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockledger/internal/app"
	"stockledger/internal/config"
	"stockledger/internal/domain/auth"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting stockledger server", "env", cfg.AppEnv, "storage", cfg.Storage)

	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalw("invalid stock configuration", "error", err)
	}

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer storage.Close()

	svc := app.NewServices(storage, opts)
	log.Infow("services initialized",
		"cancel_policy", opts.CancelPolicy,
		"default_method", opts.DefaultMethod,
		"timezone", opts.Location.String(),
	)

	// --- Auth (optional) ---
	var validator middleware.JWTValidator
	if cfg.AuthEnabled() {
		validator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
		log.Info("bearer authentication enabled")
	} else {
		log.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Store:        storage,
		Storage:      storage.Name,
		Clock:        svc.Clock,
		Catalog:      svc.Catalog,
		Movements:    svc.Movements,
		Settings:     svc.Settings,
		Reports:      svc.Reports,
		JWTValidator: validator,
		Debug:        !cfg.IsProduction() && cfg.LogLevel == "debug",
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
