// Package api exposes discovery runs over HTTP.
package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gosubgroup/app"
	"gosubgroup/internal"
	"gosubgroup/internal/config"
)

// Server routes API requests to the discovery service
type Server struct {
	router   *chi.Mux
	service  *app.DiscoveryService
	defaults config.SearchConfig
	dataDir  string
	metrics  bool
	logger   *internal.Logger
}

// NewServer creates the API server. Dataset paths in requests are resolved
// inside cfg.Data.Dir.
func NewServer(service *app.DiscoveryService, cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		defaults: cfg.Search,
		dataDir:  cfg.Data.Dir,
		metrics:  cfg.Metrics.Enabled,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	if s.logger.GetLevel() >= internal.LogLevelDebug {
		s.router.Use(middleware.Logger)
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Post("/compare", s.handleCompare)
		r.Post("/profile", s.handleProfile)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// resolveDataset keeps request paths inside the data directory
func (s *Server) resolveDataset(name string) string {
	clean := filepath.Clean("/" + strings.TrimSpace(name))
	return filepath.Join(s.dataDir, clean)
}
