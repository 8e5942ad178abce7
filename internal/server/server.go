// Package server wires the dashboard HTTP API together.
package server

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"time"

	"runboard/internal/registry"
	"runboard/internal/server/handlers"
	"runboard/internal/server/middleware"
)

//go:embed static/index.html
var staticFS embed.FS

// Options configures the HTTP server.
type Options struct {
	Addr           string
	APIToken       string  // empty disables auth
	RateLimit      float64 // requests per second per client, 0 disables
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *registry.Registry
	logger     *slog.Logger
}

// New creates a new dashboard server.
func New(deps handlers.Deps, opts Options) *Server {
	h := handlers.New(deps)

	s := &Server{
		registry: deps.Registry,
		logger:   opts.Logger,
	}

	rateMW := middleware.RateLimit(opts.RateLimit)
	authMW := middleware.RequireToken(opts.APIToken)

	// Read-only API routes are rate limited; mutating routes additionally
	// require the API token when one is configured.
	open := func(hf http.HandlerFunc) http.Handler {
		return rateMW(hf)
	}
	guarded := func(hf http.HandlerFunc) http.Handler {
		var inner http.Handler = hf
		if opts.APIToken != "" {
			inner = authMW(inner)
		}
		return rateMW(inner)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /api/automations", open(h.ListAutomations))
	mux.Handle("POST /api/execute/{id}", guarded(h.Execute))
	mux.Handle("GET /api/jobs", open(h.ListJobs))
	mux.Handle("GET /api/log/{id}", open(h.GetLog))
	mux.Handle("POST /api/kill/{id}", guarded(h.Kill))
	mux.Handle("GET /api/archive", open(h.ListArchive))
	mux.Handle("GET /api/archive/{id}", open(h.GetArchivedJob))
	mux.Handle("GET /api/system", open(h.GetSystemStats))
	mux.Handle("GET /api/stream/{id}", open(s.handleStream))

	// Probes, metrics and the UI stay outside auth and rate limiting.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	mux.Handle("GET /metrics", opts.MetricsHandler)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	var root http.Handler = mux
	root = middleware.Recovery(opts.Logger)(root)
	root = middleware.Logging(opts.Logger)(root)
	root = middleware.RequestID(root)

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// handleIndex serves the embedded dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "dashboard page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
