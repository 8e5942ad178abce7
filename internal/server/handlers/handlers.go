// Package handlers contains HTTP handlers for the dashboard API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"runboard/internal/archive"
	"runboard/internal/catalog"
	"runboard/internal/logger"
	"runboard/internal/observability"
	"runboard/internal/registry"
	"runboard/internal/runner"
	"runboard/pkg/api"
)

// JobRunner starts and signals automation subprocesses.
type JobRunner interface {
	Start(opts runner.StartOptions)
	Kill(jobID string) bool
}

// ArchiveStore reads jobs persisted after registry eviction.
type ArchiveStore interface {
	List(ctx context.Context, limit int) ([]archive.Record, error)
	Get(ctx context.Context, jobID string) (archive.Record, error)
	Ping(ctx context.Context) error
}

// Deps holds the collaborators the handlers dispatch to.
type Deps struct {
	Registry *registry.Registry
	Catalog  *catalog.Catalog
	Runner   JobRunner
	Archive  ArchiveStore // nil when archiving is disabled
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	registry *registry.Registry
	catalog  *catalog.Catalog
	runner   JobRunner
	archive  ArchiveStore
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(deps Deps) *Handlers {
	return &Handlers{
		registry: deps.Registry,
		catalog:  deps.Catalog,
		runner:   deps.Runner,
		archive:  deps.Archive,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// log returns the handler logger scoped to the request, carrying the request
// id stamped by the RequestID middleware.
func (h *Handlers) log(r *http.Request) *slog.Logger {
	return logger.FromContext(r.Context(), h.logger)
}
