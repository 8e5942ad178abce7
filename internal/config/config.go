// Package config handles configuration loading for the dashboard daemon.
// Values come from an optional YAML file with environment variables taking
// precedence over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no -config flag is given. A missing file
// at this path is not an error; an explicitly named missing file is.
const DefaultConfigPath = "runboard.yaml"

// Config holds all configuration values for the dashboard daemon.
type Config struct {
	// HTTP server port
	HTTPPort int

	// Path to the automation catalog YAML file
	CatalogPath string

	// Working directory for spawned automation scripts
	ScriptsDir string

	// Directory appended to PYTHONPATH so scripts can import shared helpers.
	// Defaults to ScriptsDir.
	ModuleDir string

	// Interpreter used to run automation scripts
	Interpreter string

	// Maximum number of jobs kept in the in-memory registry
	RegistryCapacity int

	// SQLite file for archived terminal jobs; empty disables archiving
	ArchivePath string

	// Archived jobs older than this are purged
	ArchiveRetention time.Duration

	// Static bearer token for mutating API routes; empty disables auth
	APIToken string

	// Requests per second per client; 0 disables rate limiting
	RateLimit float64

	// OTLP collector endpoint; empty disables tracing
	OTELEndpoint string

	// Debug lowers the log level
	Debug bool
}

// fileConfig mirrors Config for YAML decoding. Pointer fields distinguish
// "absent" from an explicit zero value (archive_path: "" disables archiving).
type fileConfig struct {
	HTTPPort         *int     `yaml:"http_port"`
	CatalogPath      *string  `yaml:"catalog_path"`
	ScriptsDir       *string  `yaml:"scripts_dir"`
	ModuleDir        *string  `yaml:"module_dir"`
	Interpreter      *string  `yaml:"interpreter"`
	RegistryCapacity *int     `yaml:"registry_capacity"`
	ArchivePath      *string  `yaml:"archive_path"`
	ArchiveRetention *string  `yaml:"archive_retention"`
	APIToken         *string  `yaml:"api_token"`
	RateLimit        *float64 `yaml:"rate_limit"`
	OTELEndpoint     *string  `yaml:"otel_endpoint"`
	Debug            *bool    `yaml:"debug"`
}

// Load reads configuration from the given YAML file path and then applies
// environment variable overrides. An empty path falls back to
// DefaultConfigPath, which may be absent.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPPort:         8321,
		CatalogPath:      "automations.yaml",
		ScriptsDir:       ".",
		Interpreter:      "python3",
		RegistryCapacity: 1000,
		ArchivePath:      "runboard.db",
		ArchiveRetention: 720 * time.Hour,
	}

	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.ModuleDir == "" {
		cfg.ModuleDir = cfg.ScriptsDir
	}
	if cfg.RegistryCapacity < 1 {
		return nil, fmt.Errorf("registry capacity must be at least 1, got %d", cfg.RegistryCapacity)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative, got %v", cfg.RateLimit)
	}
	if cfg.Interpreter == "" {
		return nil, fmt.Errorf("interpreter must not be empty")
	}

	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.HTTPPort != nil {
		cfg.HTTPPort = *fc.HTTPPort
	}
	if fc.CatalogPath != nil {
		cfg.CatalogPath = *fc.CatalogPath
	}
	if fc.ScriptsDir != nil {
		cfg.ScriptsDir = *fc.ScriptsDir
	}
	if fc.ModuleDir != nil {
		cfg.ModuleDir = *fc.ModuleDir
	}
	if fc.Interpreter != nil {
		cfg.Interpreter = *fc.Interpreter
	}
	if fc.RegistryCapacity != nil {
		cfg.RegistryCapacity = *fc.RegistryCapacity
	}
	if fc.ArchivePath != nil {
		cfg.ArchivePath = *fc.ArchivePath
	}
	if fc.ArchiveRetention != nil {
		d, err := time.ParseDuration(*fc.ArchiveRetention)
		if err != nil {
			return fmt.Errorf("invalid archive_retention: %w", err)
		}
		cfg.ArchiveRetention = d
	}
	if fc.APIToken != nil {
		cfg.APIToken = *fc.APIToken
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.OTELEndpoint != nil {
		cfg.OTELEndpoint = *fc.OTELEndpoint
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.HTTPPort = p
	}

	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("SCRIPTS_DIR"); v != "" {
		cfg.ScriptsDir = v
	}
	if v := os.Getenv("MODULE_DIR"); v != "" {
		cfg.ModuleDir = v
	}
	if v := os.Getenv("INTERPRETER"); v != "" {
		cfg.Interpreter = v
	}

	if capStr := os.Getenv("REGISTRY_CAPACITY"); capStr != "" {
		c, err := strconv.Atoi(capStr)
		if err != nil {
			return fmt.Errorf("invalid REGISTRY_CAPACITY: %w", err)
		}
		cfg.RegistryCapacity = c
	}

	// LookupEnv so ARCHIVE_PATH= (empty) can disable archiving.
	if v, ok := os.LookupEnv("ARCHIVE_PATH"); ok {
		cfg.ArchivePath = v
	}

	if retStr := os.Getenv("ARCHIVE_RETENTION"); retStr != "" {
		d, err := time.ParseDuration(retStr)
		if err != nil {
			return fmt.Errorf("invalid ARCHIVE_RETENTION: %w", err)
		}
		cfg.ArchiveRetention = d
	}

	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.APIToken = v
	}

	if rateStr := os.Getenv("RATE_LIMIT"); rateStr != "" {
		r, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = r
	}

	if v := os.Getenv("OTEL_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}

	if dbgStr := os.Getenv("DEBUG"); dbgStr != "" {
		d, err := strconv.ParseBool(dbgStr)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = d
	}

	return nil
}
