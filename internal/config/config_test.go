package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 8321 {
		t.Errorf("expected default port 8321, got %d", cfg.HTTPPort)
	}
	if cfg.CatalogPath != "automations.yaml" {
		t.Errorf("expected default catalog path automations.yaml, got %s", cfg.CatalogPath)
	}
	if cfg.ScriptsDir != "." {
		t.Errorf("expected default scripts dir ., got %s", cfg.ScriptsDir)
	}
	if cfg.ModuleDir != "." {
		t.Errorf("expected module dir to default to scripts dir, got %s", cfg.ModuleDir)
	}
	if cfg.Interpreter != "python3" {
		t.Errorf("expected default interpreter python3, got %s", cfg.Interpreter)
	}
	if cfg.RegistryCapacity != 1000 {
		t.Errorf("expected default registry capacity 1000, got %d", cfg.RegistryCapacity)
	}
	if cfg.ArchivePath != "runboard.db" {
		t.Errorf("expected default archive path runboard.db, got %s", cfg.ArchivePath)
	}
	if cfg.ArchiveRetention != 720*time.Hour {
		t.Errorf("expected default archive retention 720h, got %v", cfg.ArchiveRetention)
	}
	if cfg.APIToken != "" {
		t.Errorf("expected auth disabled by default, got token %q", cfg.APIToken)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("expected rate limiting disabled by default, got %v", cfg.RateLimit)
	}
	if cfg.OTELEndpoint != "" {
		t.Errorf("expected tracing disabled by default, got %q", cfg.OTELEndpoint)
	}
	if cfg.Debug {
		t.Error("expected debug off by default")
	}
}

func TestLoad_FromConfigFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "runboard-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `
http_port: 7777
catalog_path: "/etc/runboard/automations.yaml"
scripts_dir: "/srv/scripts"
interpreter: "python3.12"
registry_capacity: 25
archive_path: ""
archive_retention: "24h"
api_token: "sekrit"
rate_limit: 5
debug: true
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.HTTPPort)
	}
	if cfg.CatalogPath != "/etc/runboard/automations.yaml" {
		t.Errorf("expected catalog path from file, got %s", cfg.CatalogPath)
	}
	if cfg.ScriptsDir != "/srv/scripts" {
		t.Errorf("expected scripts dir from file, got %s", cfg.ScriptsDir)
	}
	if cfg.ModuleDir != "/srv/scripts" {
		t.Errorf("expected module dir to follow scripts dir, got %s", cfg.ModuleDir)
	}
	if cfg.Interpreter != "python3.12" {
		t.Errorf("expected interpreter python3.12, got %s", cfg.Interpreter)
	}
	if cfg.RegistryCapacity != 25 {
		t.Errorf("expected registry capacity 25, got %d", cfg.RegistryCapacity)
	}
	if cfg.ArchivePath != "" {
		t.Errorf("expected archiving disabled by explicit empty path, got %q", cfg.ArchivePath)
	}
	if cfg.ArchiveRetention != 24*time.Hour {
		t.Errorf("expected archive retention 24h, got %v", cfg.ArchiveRetention)
	}
	if cfg.APIToken != "sekrit" {
		t.Errorf("expected api token from file, got %q", cfg.APIToken)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("expected rate limit 5, got %v", cfg.RateLimit)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled from file")
	}
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "runboard-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `
http_port: 7777
interpreter: "python3.11"
archive_retention: "48h"
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()

	t.Setenv("PORT", "8888")
	t.Setenv("INTERPRETER", "python3.13")
	t.Setenv("ARCHIVE_RETENTION", "1h")
	t.Setenv("REGISTRY_CAPACITY", "3")
	t.Setenv("RATE_LIMIT", "2.5")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env should override config file
	if cfg.HTTPPort != 8888 {
		t.Errorf("expected HTTPPort 8888 from env, got %d", cfg.HTTPPort)
	}
	if cfg.Interpreter != "python3.13" {
		t.Errorf("expected interpreter from env, got %s", cfg.Interpreter)
	}
	if cfg.ArchiveRetention != time.Hour {
		t.Errorf("expected archive retention 1h from env, got %v", cfg.ArchiveRetention)
	}
	if cfg.RegistryCapacity != 3 {
		t.Errorf("expected registry capacity 3 from env, got %d", cfg.RegistryCapacity)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5 from env, got %v", cfg.RateLimit)
	}
}

func TestLoad_EmptyArchivePathEnvDisablesArchiving(t *testing.T) {
	t.Setenv("ARCHIVE_PATH", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ArchivePath != "" {
		t.Errorf("expected empty ARCHIVE_PATH to disable archiving, got %q", cfg.ArchivePath)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-port"},
		{"bad capacity", "REGISTRY_CAPACITY", "many"},
		{"zero capacity", "REGISTRY_CAPACITY", "0"},
		{"bad retention", "ARCHIVE_RETENTION", "fortnight"},
		{"bad rate limit", "RATE_LIMIT", "fast"},
		{"negative rate limit", "RATE_LIMIT", "-1"},
		{"bad debug", "DEBUG", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
