package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"runboard/internal/archive"
	"runboard/pkg/api"
)

const (
	defaultArchiveLimit = 100
	maxArchiveLimit     = 1000
)

// ListArchive handles GET /api/archive?limit=N.
// Jobs are returned newest first, without log bodies.
func (h *Handlers) ListArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.httpError(w, "Archiving is disabled", http.StatusNotFound)
		return
	}

	limit := defaultArchiveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.httpError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxArchiveLimit {
		limit = maxArchiveLimit
	}

	recs, err := h.archive.List(r.Context(), limit)
	if err != nil {
		h.log(r).Error("failed to list archive", "error", err)
		h.httpError(w, "Failed to list archive", http.StatusInternalServerError)
		return
	}

	jobs := make([]api.ArchivedJob, 0, len(recs))
	for _, rec := range recs {
		jobs = append(jobs, api.ArchivedJob{
			JobID:        rec.JobID,
			AutomationID: rec.AutomationID,
			Name:         rec.Name,
			Status:       rec.Status,
			StartedAt:    rec.StartedAt,
			EndedAt:      rec.EndedAt,
			LineCount:    rec.LineCount,
		})
	}

	h.respondJson(w, http.StatusOK, api.ArchiveResponse{Jobs: jobs})
}

// GetArchivedJob handles GET /api/archive/{id}.
// Unlike the listing, the single-job lookup includes the stored log.
func (h *Handlers) GetArchivedJob(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.httpError(w, "Archiving is disabled", http.StatusNotFound)
		return
	}

	jobID := r.PathValue("id")

	rec, err := h.archive.Get(r.Context(), jobID)
	if errors.Is(err, archive.ErrNotFound) {
		h.httpError(w, "Archived job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log(r).Error("failed to get archived job", "job_id", jobID, "error", err)
		h.httpError(w, "Failed to read archive", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, api.ArchivedJob{
		JobID:        rec.JobID,
		AutomationID: rec.AutomationID,
		Name:         rec.Name,
		Status:       rec.Status,
		StartedAt:    rec.StartedAt,
		EndedAt:      rec.EndedAt,
		LineCount:    rec.LineCount,
		Log:          rec.Log,
	})
}
