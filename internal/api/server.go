// Package api implements the HTTP layer of the balance game backend.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/balance-cup-backend/internal/config"
	"github.com/nyashahama/balance-cup-backend/internal/metrics"
	"github.com/nyashahama/balance-cup-backend/internal/round"
)

// Generator is the slice of *round.Generator the API uses.
type Generator interface {
	Generate(ctx context.Context, req round.Request) ([]round.ChoiceItem, error)
}

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AllowedOrigin is the CORS origin served in production.
	AllowedOrigin string

	// Topics is the catalogue served by GET /api/topics.
	Topics []config.Topic
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	generator Generator

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(generator Generator, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health / metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", s.handleListTopics)
		r.Post("/generate", s.handleGenerate)

		r.Route("/bracket", func(r chi.Router) {
			r.Post("/seed", s.handleSeedBracket)
			r.Post("/reduce", s.handleReduceBracket)
		})
	})

	return r
}
