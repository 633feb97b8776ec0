package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/scoring"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(
	cfg *domain.Config,
	repo domain.Repository,
	cache domain.Cache,
	bus domain.EventBus,
	register *scoring.Register,
	stats StatsFetcher,
	sessions domain.SessionStore,
	version string,
	logger *slog.Logger,
) *Server {
	metrics := NewMetrics()
	handler := NewHandler(repo, cache, bus, register, stats, sessions, metrics, cfg.Scoring.StatsTTL, version, logger)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(metrics.Middleware)     // Request latency histogram
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Operational endpoints
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		// Scoring submission is the only throttled route.
		r.With(RateLimitMiddleware(cache, cfg.RateLimit)).
			Post("/analyze", handler.Analyze)
		r.Get("/result", handler.Result)

		// Assessment history and reports
		r.Get("/assessments", handler.ListAssessments)
		r.Get("/assessments/{id}", handler.GetAssessment)
		r.Get("/assessments/{id}/report", handler.DownloadReport)

		// Dashboard aggregates
		r.Get("/stats", handler.Stats)

		// Review lists
		r.Get("/transactions", handler.ListTransactions)
		r.Get("/users", handler.ListUsers)

		// Analyst session
		r.Post("/session", handler.SignIn)
		r.Get("/session", handler.GetSession)
		r.Delete("/session", handler.SignOut)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg.Server,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
