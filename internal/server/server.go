package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/jobq/internal/config"
	"github.com/me/jobq/internal/scheduler"
	"github.com/me/jobq/internal/validate"
)

// Version is reported by the health and discovery endpoints.
const Version = "0.1.0"

// Server is the jobq REST API server. It owns no job state of its own; every
// request goes through the shared scheduler.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	sched     *scheduler.Synchronized
	rules     validate.Rules
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithRules overrides the submission rules derived from the config.
func WithRules(r validate.Rules) Option {
	return func(s *Server) {
		s.rules = r
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, sched *scheduler.Synchronized, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		sched:     sched,
		rules:     cfg.Rules(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		// Pending queue
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Post("/", s.handleCreateJob)
			r.Delete("/", s.handleClearJobs)
			r.Get("/next", s.handlePeekJob)
			r.Post("/process", s.handleProcessJob)
			r.Get("/{id}", s.handleGetJob)
		})

		// Processed history
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/", s.handleClearHistory)
		})
	})
}
