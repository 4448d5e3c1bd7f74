// Package config handles configuration loading and validation for taskgraph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskgraph/internal/core/planner"
)

// Backend selects the storage gateway implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
	BackendMemory Backend = "memory"
)

// Backends lists every supported storage backend.
var Backends = []Backend{BackendSQLite, BackendJSON, BackendMemory}

// IsValid reports whether b is a supported backend.
func (b Backend) IsValid() bool {
	return slices.Contains(Backends, b)
}

// Config holds the application configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Planner   PlannerConfig   `yaml:"planner"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects where the graph snapshot is persisted.
type StorageConfig struct {
	Backend Backend `yaml:"backend"`
	Key     string  `yaml:"key"`  // key the snapshot is stored under
	Path    string  `yaml:"path"` // json backend file, defaults to <data_dir>/taskgraph.json
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// PlannerConfig configures the keyword planner used by breakdown. User rules
// are matched before the built-in ones unless ReplaceDefaults is set.
type PlannerConfig struct {
	CriticalPatterns []string       `yaml:"critical_patterns"`
	Rules            []planner.Rule `yaml:"rules"`
	ReplaceDefaults  bool           `yaml:"replace_defaults"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// DefaultStorageKey is the key the graph snapshot is stored under.
const DefaultStorageKey = "state"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Key:     DefaultStorageKey,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "taskgraph",
			SampleRatio: 1,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Key == "" {
		c.Storage.Key = defaults.Storage.Key
	}
	if c.Storage.Path == "" && c.DataDir != "" {
		c.Storage.Path = filepath.Join(c.DataDir, "taskgraph.json")
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaults.Telemetry.ServiceName
	}
	if c.Telemetry.SampleRatio == 0 {
		c.Telemetry.SampleRatio = defaults.Telemetry.SampleRatio
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !c.Storage.Backend.IsValid() {
		return fmt.Errorf("storage.backend %q must be one of %v", c.Storage.Backend, Backends)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be between 0 and 1")
	}

	return nil
}

// PlannerRules returns the rules the keyword planner should use, in match order.
func (c *Config) PlannerRules() []planner.Rule {
	if c.Planner.ReplaceDefaults {
		return slices.Clone(c.Planner.Rules)
	}
	return append(slices.Clone(c.Planner.Rules), planner.DefaultRules()...)
}

// PlannerCriticalPatterns returns the configured critical patterns, falling
// back to the built-in ones when none are set.
func (c *Config) PlannerCriticalPatterns() []string {
	if c.Planner.CriticalPatterns == nil {
		return planner.DefaultCriticalPatterns()
	}
	return slices.Clone(c.Planner.CriticalPatterns)
}

// NewPlanner builds the keyword planner described by the configuration.
func (c *Config) NewPlanner() (*planner.Keyword, error) {
	return planner.NewKeyword(c.PlannerRules(), c.PlannerCriticalPatterns())
}
