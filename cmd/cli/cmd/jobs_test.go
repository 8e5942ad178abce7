package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"runboard/pkg/api"
)

func TestJobsCommand_ListsJobs(t *testing.T) {
	resetViper()

	pid := 4242
	endedAt := time.Now().Add(-time.Minute)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/api/jobs") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]api.JobSummary{
			"1_backup": {
				AutomationID: "backup",
				Name:         "Backup",
				Status:       "running",
				StartedAt:    time.Now().Add(-2 * time.Minute),
				PID:          &pid,
			},
			"2_cleanup": {
				AutomationID: "cleanup",
				Name:         "Cleanup",
				Status:       "completed",
				StartedAt:    time.Now().Add(-5 * time.Minute),
				EndedAt:      &endedAt,
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"jobs"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()

	// Verify table headers and content presence
	expectedStrings := []string{
		"JOB ID", "NAME", "STATUS", "PID", "STARTED", "DURATION", // Headers
		"1_backup", "Backup", "running", "4242", // Running job
		"2_cleanup", "Cleanup", "completed", // Finished job
	}

	for _, s := range expectedStrings {
		if !strings.Contains(output, s) {
			t.Errorf("expected output to contain %q, got:\n%s", s, output)
		}
	}

	// The newest job comes first.
	if strings.Index(output, "1_backup") > strings.Index(output, "2_cleanup") {
		t.Errorf("expected jobs sorted newest first, got:\n%s", output)
	}
}

func TestJobsCommand_Empty(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"jobs"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "No jobs found.") {
		t.Errorf("expected empty message, got: %s", stdout.String())
	}
}
