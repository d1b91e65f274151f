// Package server exposes an engine over HTTP with a chi router.
//
// Routes:
//
//	GET    /state                     committed collection, per-transform matrices
//	GET    /derived                   combined matrix and determinant (?layout=row|column)
//	POST   /apply                     map points through the combined matrix
//	GET    /kinds                     transform catalog
//	POST   /transforms                add a transform
//	PUT    /transforms/{id}           replace parameters and/or factor
//	PATCH  /transforms/{id}/name      rename
//	POST   /transforms/{id}/move      move to an index
//	DELETE /transforms/{id}           remove
//	PUT    /order                     reorder by a full id permutation
//	PUT    /global-factor             set the global factor
//	POST   /reset                     clear everything
//	GET    /snapshot                  export (?format=json|toml)
//	PUT    /snapshot                  import (?format=json|toml)
//	GET    /metrics                   Prometheus metrics, when enabled
//
// Validation failures answer 400, unknown ids 404 and duplicate ids 409,
// with a JSON body {"error": ..., "reason": ...}. A successful mutation
// answers the state produced by its own commit.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/katalvlaran/transformlab/engine"
)

// Server routes HTTP requests to an Engine.
type Server struct {
	engine  *engine.Engine
	logger  *log.Logger
	metrics http.Handler
	router  chi.Router

	wmu sync.Mutex // serializes HTTP mutations with their response view
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger (defaults to the engine's logger).
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router.
func New(e *engine.Engine, opts ...Option) *Server {
	s := &Server{engine: e, logger: e.Logger()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/state", s.handleState)
	r.Get("/derived", s.handleDerived)
	r.Get("/kinds", s.handleKinds)
	r.Post("/apply", s.handleApply)
	r.Route("/transforms", func(r chi.Router) {
		r.Post("/", s.handleAdd)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.handleUpdate)
			r.Delete("/", s.handleRemove)
			r.Patch("/name", s.handleRename)
			r.Post("/move", s.handleMove)
		})
	})
	r.Put("/order", s.handleReorder)
	r.Put("/global-factor", s.handleGlobalFactor)
	r.Post("/reset", s.handleReset)
	r.Get("/snapshot", s.handleExport)
	r.Put("/snapshot", s.handleImport)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// shutdownTimeout. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}

	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	s.logger.Info("stopped")

	return nil
}

// logRequests logs one line per request at info, or warn for 4xx/5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		kv := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if status >= http.StatusBadRequest {
			s.logger.Warn("request", kv...)
			return
		}
		s.logger.Info("request", kv...)
	})
}
