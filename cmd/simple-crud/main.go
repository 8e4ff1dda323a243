package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfagnish/simple-crud/internal/config"
	"github.com/alfagnish/simple-crud/internal/events"
	"github.com/alfagnish/simple-crud/internal/logging"
	"github.com/alfagnish/simple-crud/internal/server"
	"github.com/alfagnish/simple-crud/internal/users"
	"go.opentelemetry.io/otel"
)

func main() {
	started := time.Now()

	// 1. Load configuration from environment variables.
	cfg := config.Load()
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})
	slog.SetDefault(logger)

	// 2. Build the seed set.
	seed := users.DefaultSeed()
	if cfg.SeedFile != "" {
		var err error
		seed, err = users.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Error("failed to load seed data", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	// 3. Create the change feed and the store.
	hub := events.NewHub(events.DefaultBuffer)
	store, err := users.NewStore(seed,
		users.WithLogger(logger),
		users.WithPublisher(hub),
		users.WithUniqueEmailOnUpdate(cfg.UniqueEmailOnUpdate),
		users.WithTracer(otel.Tracer(users.InstrumentationName)),
		users.WithMeter(otel.Meter(users.InstrumentationName)),
	)
	if err != nil {
		logger.Error("invalid seed data", "error", err)
		os.Exit(1)
	}

	// 4. Start the HTTP server.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(cfg, store, hub, logger, started),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("simple CRUD API server started",
		"addr", cfg.ListenAddr,
		"users", store.Count(),
		"admin", cfg.EnableAdmin,
	)
	for _, route := range []string{
		"GET    /users",
		"GET    /users/{id}",
		"POST   /users",
		"PUT    /users/{id}",
		"DELETE /users/{id}",
		"GET    /users/events",
		"GET    /health",
	} {
		logger.Info("endpoint available", "route", route)
	}

	select {
	case sig := <-done:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; closing
	// the hub ends their streams.
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
