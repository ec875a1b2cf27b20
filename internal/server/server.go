// Package server exposes project operations over HTTP.
//
// Routes (all JSON unless noted):
//
//	GET    /healthz
//	GET    /v1/projects
//	GET    /v1/projects/{name}
//	GET    /v1/projects/{name}/entities/{id}
//	DELETE /v1/projects/{name}/entities                  {"ids": [...]}
//	POST   /v1/projects/{name}/closure                   {"ids": [...]}
//	POST   /v1/projects/{name}/diagrams/{id}/duplicate   {"shallow": bool}
//	GET    /v1/projects/{name}/diagrams/{id}/export?format=svg   (raw bytes)
//
// Entity identifiers use the tagged form "model:<uuid>" or "view:<uuid>";
// a bare UUID names a model node. Errors are returned as
// {"error": CODE, "message": text}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/workspace"
)

// Server routes HTTP requests to a workspace runner.
type Server struct {
	runner *workspace.Runner
	logger *log.Logger
	router chi.Router
}

// New builds the router.
func New(runner *workspace.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Route("/v1/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Get("/entities/{id}", s.getEntity)
			r.Delete("/entities", s.deleteEntities)
			r.Post("/closure", s.closure)
			r.Post("/diagrams/{id}/duplicate", s.duplicate)
			r.Get("/diagrams/{id}/export", s.export)
		})
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
