package handlers

import (
	"net/http"

	"runboard/pkg/api"
)

// ListJobs handles GET /api/jobs.
// It returns every job the registry still holds, keyed by job id,
// without log bodies.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()

	out := make(map[string]api.JobSummary, len(snap))
	for id, v := range snap {
		out[id] = api.JobSummary{
			AutomationID: v.AutomationID,
			Name:         v.Name,
			Status:       string(v.Status),
			StartedAt:    v.StartedAt,
			EndedAt:      v.EndedAt,
			PID:          v.PID,
		}
	}

	h.respondJson(w, http.StatusOK, out)
}

// GetLog handles GET /api/log/{id}.
// The log is a snapshot; clients poll for updates.
func (h *Handlers) GetLog(w http.ResponseWriter, r *http.Request) {
	v, ok := h.registry.Get(r.PathValue("id"))
	if !ok {
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	}

	h.respondJson(w, http.StatusOK, api.LogResponse{
		Log:    v.Log,
		Status: string(v.Status),
	})
}

// Kill handles POST /api/kill/{id}.
// Termination is best-effort: success means the signal was delivered, not
// that the process is confirmed dead. A job that already reached a terminal
// status reports success=false and keeps its status.
func (h *Handlers) Kill(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	if _, ok := h.registry.Get(jobID); !ok {
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	}

	killed := h.runner.Kill(jobID)
	h.log(r).Info("kill requested", "job_id", jobID, "success", killed)

	h.respondJson(w, http.StatusOK, api.KillResponse{Success: killed})
}
