package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"runboard/internal/runner"
	"runboard/pkg/api"
)

// ListAutomations handles GET /api/automations.
// It returns the catalog keyed by automation id.
func (h *Handlers) ListAutomations(w http.ResponseWriter, r *http.Request) {
	autos := h.catalog.List()

	out := make(map[string]api.AutomationInfo, len(autos))
	for _, a := range autos {
		out[a.ID] = api.AutomationInfo{
			Name:        a.Name,
			Description: a.Description,
			Category:    a.Category,
			Script:      a.Command,
			OutputKind:  a.OutputKind,
		}
	}

	h.respondJson(w, http.StatusOK, out)
}

// Execute handles POST /api/execute/{id}.
// It registers a running job and hands it to the runner. The request only
// fails for an unknown automation id or a malformed body; anything the
// subprocess does later surfaces through the job's status and log.
func (h *Handlers) Execute(w http.ResponseWriter, r *http.Request) {
	automationID := r.PathValue("id")

	auto, ok := h.catalog.Get(automationID)
	if !ok {
		h.respondJson(w, http.StatusNotFound, api.ExecuteResponse{
			Success: false,
			Error:   "Unknown automation",
		})
		return
	}

	// The body is optional; an empty body means no extra args.
	var req api.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID := h.registry.Create(auto.ID, auto.Name)
	h.runner.Start(runner.StartOptions{
		JobID:        jobID,
		AutomationID: auto.ID,
		Script:       auto.Command,
		Args:         req.Args,
	})
	h.metrics.JobStarted(r.Context(), auto.ID)

	h.log(r).Info("job started", "job_id", jobID, "automation_id", auto.ID)

	h.respondJson(w, http.StatusOK, api.ExecuteResponse{
		Success: true,
		JobID:   jobID,
		Name:    auto.Name,
	})
}
