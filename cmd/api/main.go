// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

// Command api is the entry point for the Atelier portfolio manager.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the portfolio sandbox and verify the catalog files.
//  4. Connect to Redis when a draft cache backend is configured.
//  5. Wire the catalog store, media materializer, and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/lucasmr/atelier/internal/api"
	"github.com/lucasmr/atelier/internal/catalog"
	"github.com/lucasmr/atelier/internal/draft"
	"github.com/lucasmr/atelier/internal/media"
	"github.com/lucasmr/atelier/internal/platform/config"
	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/imagery"
	redisstore "github.com/lucasmr/atelier/internal/platform/redis"
	"github.com/lucasmr/atelier/internal/platform/sandbox"
	"github.com/lucasmr/atelier/internal/platform/sanitize"
	"github.com/lucasmr/atelier/internal/project"
	"github.com/lucasmr/atelier/internal/translate"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "atelier"))
	slog.SetDefault(log)

	log.Info("[Atelier] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "atelier"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("portfolio_root", cfg.PortfolioRoot),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Portfolio Sandbox & Catalog Store ──────────────────────────────
	box, err := sandbox.New(cfg.PortfolioRoot)
	must(log, err, "open portfolio sandbox")

	store := catalog.NewFileStore(box, cfg.DataDir, constants.Locales, log)

	// Fail fast on unreadable or corrupt catalogs.
	_, err = store.ReadAll(startupCtx)
	must(log, err, "read locale catalogs")

	// ── 4. Redis (optional draft cache backend) ───────────────────────────
	var rdb *goredis.Client
	draftStore := draft.Store(draft.NewMemoryStore(cfg.DraftTTL))
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		draftStore = draft.NewRedisStore(rdb, cfg.DraftTTL)
	} else {
		log.Info("draft_cache_in_memory")
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	imageFormat := imagery.JPEG
	if cfg.ImageFormat == "png" {
		imageFormat = imagery.PNG
	}

	materializer := media.NewMaterializer(box, media.Config{
		AssetsDir:       cfg.AssetsDir,
		MaxGalleryWidth: cfg.MaxGalleryWidth,
		ThumbWidth:      cfg.ThumbWidth,
		ThumbHeight:     cfg.ThumbHeight,
		Encode:          imagery.Options{Format: imageFormat, Quality: cfg.ImageQuality},
	}, log)

	sanitizer := sanitize.New(true)

	projectService := project.NewService(
		store, materializer, sanitizer, constants.Locales, constants.ReferenceLocale, log)
	projectHandler := project.NewHandler(projectService)

	var translateClient *translate.Client
	if cfg.TranslatorURL != "" {
		translateClient = translate.NewClient(cfg.TranslatorURL, cfg.TranslatorTimeout)
		log.Info("translator_configured", slog.String("url", cfg.TranslatorURL))
	}
	translateService := translate.NewService(translateClient, sanitizer, constants.Locales, log)
	translateHandler := translate.NewHandler(translateService)

	draftService := draft.NewService(draftStore, log)
	draftHandler := draft.NewHandler(draftService)

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	deps := api.HealthDependencies{
		CheckCatalogs: func() error {
			_, err := store.ReadAll(context.Background())
			return err
		},
		CheckAssets: func() error {
			dir, err := box.Join(cfg.AssetsDir)
			if err != nil {
				return err
			}
			return os.MkdirAll(dir, 0o755)
		},
	}
	if rdb != nil {
		deps.CheckCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(deps, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Project:   projectHandler,
		Translate: translateHandler,
		Draft:     draftHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, box, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
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

	// Give in-flight requests enough time to complete. Queued catalog
	// mutations run to completion; a disconnect never rolls back a write.
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
