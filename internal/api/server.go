package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/hookwatch/internal/config"
	"github.com/mattjoyce/hookwatch/internal/ledger"
)

// LedgerReader is the read-only view of the ledger used by the dashboard,
// health and stream endpoints.
type LedgerReader interface {
	Snapshot(limit int) []ledger.Record
	SnapshotSince(lastSeq int64) []ledger.Record
	Subscribe() (<-chan ledger.Record, func())
	Len() int
	Total() int64
	Capacity() int
	Epoch() string
}

// RouteRegistrar mounts additional routes, such as the webhook endpoint.
type RouteRegistrar interface {
	Routes(r chi.Router)
}

// Config holds API server configuration
type Config struct {
	Listen         string
	PublicURL      string
	DashboardLimit int
	// VerifyToken is shown on the dashboard so it can be pasted into the
	// platform's app settings.
	VerifyToken string
	Flags       config.Flags
}

// Server represents the HTTP server hosting the webhook and its viewers.
type Server struct {
	config    Config
	ledger    LedgerReader
	webhook   RouteRegistrar
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new server instance
func New(config Config, ledger LedgerReader, webhook RouteRegistrar, logger *slog.Logger) *Server {
	if config.DashboardLimit <= 0 {
		config.DashboardLimit = 20
	}
	return &Server{
		config:    config,
		ledger:    ledger,
		webhook:   webhook,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking)
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server starting", "listen", s.config.Listen)

	// Run server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures the HTTP router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/health", s.handleHealth)
	r.Get("/api/webhooks", s.handleListWebhooks)
	r.Get("/events", s.handleEvents)

	if s.webhook != nil {
		s.webhook.Routes(r)
	}

	return r
}

// loggingMiddleware logs HTTP requests (excludes payloads)
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}
