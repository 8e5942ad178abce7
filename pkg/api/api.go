// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the dashboard server.
package api

import "time"

// AutomationInfo describes one catalog entry in API responses.
// The map key in GET /api/automations is the automation id.
type AutomationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Script      string `json:"script"`
	OutputKind  string `json:"output_kind,omitempty"`
}

// ExecuteRequest is the optional request body for launching an automation.
type ExecuteRequest struct {
	Args []string `json:"args,omitempty"`
}

// ExecuteResponse is the response body after an execute request.
// On success JobID and Name are set; on failure Error is set.
type ExecuteResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JobSummary represents one job in GET /api/jobs responses.
// The map key is the job id. EndedAt and PID are null until the job
// reaches a terminal state / the process has been spawned.
type JobSummary struct {
	AutomationID string     `json:"automation_id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	PID          *int       `json:"pid"`
}

// LogResponse is the response body for GET /api/log/{job_id}.
type LogResponse struct {
	Log    []string `json:"log"`
	Status string   `json:"status"`
}

// KillResponse is the response body for POST /api/kill/{job_id}.
type KillResponse struct {
	Success bool `json:"success"`
}

// ArchivedJob represents a terminal job that was evicted from the
// in-memory registry. Log is only populated on single-job lookups.
type ArchivedJob struct {
	JobID        string     `json:"job_id"`
	AutomationID string     `json:"automation_id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	LineCount    int        `json:"line_count"`
	Log          []string   `json:"log,omitempty"`
}

// ArchiveResponse is the response body for GET /api/archive.
type ArchiveResponse struct {
	Jobs []ArchivedJob `json:"jobs"`
}

// SystemStats is the response body for GET /api/system.
type SystemStats struct {
	Hostname          string  `json:"hostname"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryTotal       uint64  `json:"memory_total_bytes"`
	MemoryAvailable   uint64  `json:"memory_available_bytes"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	UptimeSeconds     uint64  `json:"uptime_seconds"`
	Goroutines        int     `json:"goroutines"`
	RunningJobs       int     `json:"running_jobs"`
	TotalJobs         int     `json:"total_jobs"`
}

// StreamFrame is one message on the GET /api/stream/{job_id} WebSocket.
// Lines holds log lines the client has not seen yet; Done marks the
// final frame after the job reached a terminal status.
type StreamFrame struct {
	Lines  []string `json:"lines"`
	Status string   `json:"status"`
	Done   bool     `json:"done"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
