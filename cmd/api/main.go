// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

// Command api is the entry point for the Coope San Ramón mobile channel API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the session store, core bank client, and transfer engine.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/api"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/config"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/events"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/migration"
	pgstore "github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/postgres"
	redisstore "github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/redis"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/session"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/transfer"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[CoopeMovil] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("channel", cfg.ChannelCode),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Session Store ──────────────────────────────────────────────────
	vault := session.NewRedisVault(rdb, cfg.InstallationID)
	store := session.NewStore(vault, log)

	// The core bank client authenticates with whatever token the store holds.
	bank := corebank.NewClient(cfg.CoreBankURL, cfg.CoreBankAPIKey, cfg.ChannelCode, store, log)

	// ── 7. Event Producer ─────────────────────────────────────────────────
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.EventsEnabled() {
		producer, err := events.NewProducer(cfg.AMQPURL, log)
		must(log, err, "connect to event broker")
		defer producer.Close()
		publisher = producer
	}

	// ── 8. Transfer Engine ────────────────────────────────────────────────
	capabilities := transfer.NewCapabilityCache(bank, rdb, cfg.InstallationID)
	journal := transfer.NewPostgresJournal(pool)
	transferService := transfer.NewService(bank, capabilities, journal, publisher, store, cfg.ChannelCode, log)

	// Logout fans out: the capability memo and every open attempt are wiped
	// together with the vaulted token.
	store.RegisterResettable(capabilities)
	store.RegisterResettable(transferService)

	// Recover a persisted session from the vault, discarding it silently when
	// it no longer clears the expiry margin.
	must(log, store.Initialize(startupCtx), "initialize session store")

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   session.NewHandler(store, bank, cfg.ChannelCode, cfg.InstallationID),
		Transfer:  transfer.NewHandler(transferService),
	}

	server := api.NewServer(serverCtx, cfg, log, store, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
