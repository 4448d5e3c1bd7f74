package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/planner"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, DefaultStorageKey, cfg.Storage.Key)
	assert.Equal(t, filepath.Join(dataDir, "taskgraph.json"), cfg.Storage.Path)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5000, cfg.Database.BusyTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "taskgraph", cfg.Telemetry.ServiceName)
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: json
  key: work
database:
  busy_timeout: 250
planner:
  critical_patterns: ["\\bprod"]
  rules:
    - name: triage
      pattern: triage
      steps:
        - title: "Label {{ .Goal }}"
          priority: low
telemetry:
  enabled: true
  endpoint: http://collector:4318
`)
	dataDir := t.TempDir()

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "work", cfg.Storage.Key)
	assert.Equal(t, 250, cfg.Database.BusyTimeout)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns, "unset values keep defaults")
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http://collector:4318", cfg.Telemetry.Endpoint)

	require.Len(t, cfg.Planner.Rules, 1)
	assert.Equal(t, "triage", cfg.Planner.Rules[0].Name)
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: postgres\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate_RequiresDataDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
}

func TestPlannerRules_UserRulesFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Planner.Rules = []planner.Rule{{Name: "mine", Pattern: "fix", Steps: []planner.Template{{Title: "only step"}}}}

	rules := cfg.PlannerRules()
	require.Len(t, rules, len(planner.DefaultRules())+1)
	assert.Equal(t, "mine", rules[0].Name)

	p, err := cfg.NewPlanner()
	require.NoError(t, err)
	steps := p.Plan("fix the build")
	require.Len(t, steps, 1)
	assert.Equal(t, "only step", steps[0].Title)
}

func TestPlannerRules_ReplaceDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Planner.ReplaceDefaults = true

	assert.Empty(t, cfg.PlannerRules())

	p, err := cfg.NewPlanner()
	require.NoError(t, err)
	assert.Empty(t, p.Plan("fix the build"))
}

func TestPlannerCriticalPatterns(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, planner.DefaultCriticalPatterns(), cfg.PlannerCriticalPatterns())

	cfg.Planner.CriticalPatterns = []string{}
	p, err := cfg.NewPlanner()
	require.NoError(t, err)
	assert.False(t, p.IsCritical("fix prod"), "an explicit empty list disables approval gates")
}
