package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/planner"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.applyDefaults()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Planner.Rules = []planner.Rule{
		{Name: "triage", Pattern: "^triage", Steps: []planner.Template{{Title: "Label {{ .Goal }}"}}},
	}

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_InvalidRulePattern(t *testing.T) {
	cfg := validConfig(t)
	cfg.Planner.Rules = []planner.Rule{
		{Name: "bad", Pattern: "[invalid", Steps: []planner.Template{{Title: "x"}}},
	}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Contains(t, fieldErrs[0].Field, "planner.rules[0]")
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid pattern")
}

func TestValidateDeep_InvalidStepTemplate(t *testing.T) {
	cfg := validConfig(t)
	cfg.Planner.Rules = []planner.Rule{
		{Name: "a", Pattern: "a", Steps: []planner.Template{{Title: "{{ .Goal }"}}},
		{Name: "b", Pattern: "b", Steps: []planner.Template{{Title: "{{ .Unknown }}"}}},
	}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestValidateDeep_InvalidCriticalPattern(t *testing.T) {
	cfg := validConfig(t)
	cfg.Planner.CriticalPatterns = []string{"(unclosed"}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "planner.critical_patterns[0]", fieldErrs[0].Field)
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestValidateDeep_StoragePathIsDirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.Path = t.TempDir()

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "storage.path", fieldErrs[0].Field)
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.Storage.Backend = BackendMemory
	cfg.Planner.ReplaceDefaults = true

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Planner", warnings[0].Category)
	assert.Equal(t, "Storage", warnings[1].Category)
}
