// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lucasmr/atelier/internal/draft"
	"github.com/lucasmr/atelier/internal/platform/config"
	"github.com/lucasmr/atelier/internal/platform/constants"
	"github.com/lucasmr/atelier/internal/platform/middleware"
	"github.com/lucasmr/atelier/internal/platform/respond"
	"github.com/lucasmr/atelier/internal/platform/sandbox"
	"github.com/lucasmr/atelier/internal/project"
	"github.com/lucasmr/atelier/internal/translate"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler, always 200 while the process lives.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Project handles the catalog CRUD and reorder endpoints.
	Project *project.Handler

	// Translate proxies the optional external translator.
	Translate *translate.Handler

	// Draft handles the autosave cache endpoints.
	Draft *draft.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. The box serves the read-only asset files.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, box *sandbox.Box, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg, splitOrigins(cfg.ExtraOrigins)))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Asset Files
	// Materialized images, served read-only through the sandbox.
	r.Get("/assets/*", assetHandler(box))

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/projects", h.Project.Routes())
		api.Get("/catalog/consistency", h.Project.Consistency)
		api.Post("/translate", h.Translate.Translate)
		api.Mount("/drafts", h.Draft.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// assetHandler serves files below the root-relative "assets" tree.
//
// Every requested path passes through the sandbox first, so traversal
// attempts fail with PATH_ESCAPE before any filesystem access.
func assetHandler(box *sandbox.Box) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		rest := chi.URLParam(request, "*")

		abs, err := box.Resolve("assets/" + rest)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		http.ServeFile(writer, request, abs)
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
