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

func TestArchiveList_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/api/archive") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		endedAt := time.Date(2026, 8, 20, 3, 0, 12, 0, time.UTC)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(api.ArchiveResponse{
			Jobs: []api.ArchivedJob{
				{
					JobID:        "41_backup",
					AutomationID: "backup",
					Name:         "Backup",
					Status:       "completed",
					StartedAt:    time.Date(2026, 8, 20, 3, 0, 0, 0, time.UTC),
					EndedAt:      &endedAt,
					LineCount:    12,
				},
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"archive", "list"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()

	expectedStrings := []string{
		"JOB ID", "NAME", "STATUS", "LINES", // Headers
		"41_backup", "Backup", "completed", "12", // Data
	}

	for _, s := range expectedStrings {
		if !strings.Contains(output, s) {
			t.Errorf("expected output to contain %q, got:\n%s", s, output)
		}
	}
}

func TestArchiveList_PassesLimit(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("expected limit=5, got %s", got)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(api.ArchiveResponse{Jobs: []api.ArchivedJob{}})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"archive", "list", "--limit", "5"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestArchiveList_Empty(t *testing.T) {
	resetViper()
	archiveListCmd.Flags().Set("limit", "20")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(api.ArchiveResponse{Jobs: []api.ArchivedJob{}})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"archive", "list"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "No archived jobs found.") {
		t.Errorf("expected empty message, got: %s", stdout.String())
	}
}

func TestArchiveShow_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/archive/41_backup") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		endedAt := time.Date(2026, 8, 20, 3, 0, 12, 0, time.UTC)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(api.ArchivedJob{
			JobID:        "41_backup",
			AutomationID: "backup",
			Name:         "Backup",
			Status:       "completed",
			StartedAt:    time.Date(2026, 8, 20, 3, 0, 0, 0, time.UTC),
			EndedAt:      &endedAt,
			LineCount:    2,
			Log:          []string{"starting backup", "backup complete"},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"archive", "show", "41_backup"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "41_backup") {
		t.Errorf("expected job id in output, got: %s", output)
	}
	if !strings.Contains(output, "starting backup\nbackup complete\n") {
		t.Errorf("expected stored log lines in order, got: %s", output)
	}
}

func TestArchiveShow_RequiresJobIDArgument(t *testing.T) {
	resetViper()

	var stderr bytes.Buffer
	rootCmd.SetOut(&stderr)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"archive", "show"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error when no job ID provided")
	}
}
