// Package server exposes editing sessions over HTTP with a chi router.
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/memory"
	sessionrepo "github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/session"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/services"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/metrics"
	"github.com/ThatOrJohn/flowturi-designer/pkg/validation"
)

// Config holds the collaborators of the HTTP API
type Config struct {
	Sessions *sessionrepo.InMemoryRepository
	Exports  *services.ExportService
	// Sink receives every downloaded export
	Sink     export.Sink
	Metrics  *metrics.Registry
	Logger   *zap.Logger
	Defaults simulation.Settings
}

// Server routes requests to sessions
type Server struct {
	sessions  *sessionrepo.InMemoryRepository
	exports   *services.ExportService
	sink      export.Sink
	metrics   *metrics.Registry
	logger    *zap.Logger
	defaults  simulation.Settings
	validator *validation.Middleware
	// owned is the default sink New created, if any
	owned io.Closer
}

// New creates a server. Nil collaborators get working defaults; call Close to
// release the ones it created.
func New(cfg Config) *Server {
	s := &Server{
		sessions:  cfg.Sessions,
		exports:   cfg.Exports,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		defaults:  cfg.Defaults,
		validator: validation.NewMiddleware(nil),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.sessions == nil {
		s.sessions = sessionrepo.NewInMemoryRepository(
			sessionrepo.WithTracker(s.metrics),
			sessionrepo.WithEditorOptions(editor.WithLogger(s.logger), editor.WithMetrics(s.metrics)),
		)
	}
	if s.exports == nil {
		s.exports = services.NewExportService(
			services.WithExportLogger(s.logger),
			services.WithExportMetrics(s.metrics),
		)
	}
	if s.sink == nil {
		store := memory.DefaultStore()
		s.sink = store
		s.owned = store
	}
	if s.defaults == (simulation.Settings{}) {
		s.defaults = simulation.DefaultSettings()
	}
	return s
}

// Close stops the default sink created by New. Collaborators passed in
// through Config are left to their owners.
func (s *Server) Close() error {
	if s.owned == nil {
		return nil
	}
	return s.owned.Close()
}

// Handler configures all routes and middleware
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))
	router.Use(requestMetrics(s.metrics))

	router.Get("/healthz", s.healthCheck)
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	router.Get("/options", s.settingsOptions)

	router.Route("/sessions", func(r chi.Router) {
		r.Use(s.validator.RequireJSON)
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/commands", s.dispatchCommand)
			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)
			r.Get("/history", s.history)
			r.Post("/history/jump", s.jump)
			r.Put("/settings", s.updateSettings)
			r.Get("/export.csv", s.exportCSV)
		})
	})

	return router
}

// HTTPServer wraps Handler with the configured timeouts
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}
