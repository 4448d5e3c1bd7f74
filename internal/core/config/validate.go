package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// regex patterns, step templates, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validatePlanner(),
		c.validateTelemetry(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Planner.ReplaceDefaults && len(c.Planner.Rules) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Planner",
			Message:  "replace_defaults is set without rules; every breakdown uses the fallback plan",
		})
	}

	if c.Storage.Backend == BackendMemory {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     string(c.Storage.Backend),
			Message:  "memory backend does not persist between runs",
		})
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and json store path.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("storage.path", c.Storage.Path, isFileOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isFileOrNotExist validates that a path is a regular file or doesn't exist.
func isFileOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory, not a file")
	}
	return nil
}

// validatePlanner compiles every configured rule and critical pattern.
func (c *Config) validatePlanner() error {
	var errs criterio.FieldErrorsBuilder

	for i, rule := range c.Planner.Rules {
		if err := rule.Validate(); err != nil {
			errs = errs.Append(fmt.Sprintf("planner.rules[%d]", i), err)
		}
	}

	for i, p := range c.Planner.CriticalPatterns {
		if _, err := regexp.Compile("(?i)" + p); err != nil {
			errs = errs.Append(fmt.Sprintf("planner.critical_patterns[%d]", i), fmt.Errorf("invalid regex %q: %w", p, err))
		}
	}

	return errs.ToError()
}

func (c *Config) validateTelemetry() error {
	if !c.Telemetry.Enabled || c.Telemetry.Endpoint == "" {
		return nil
	}

	return criterio.Run("telemetry.endpoint", c.Telemetry.Endpoint, func(ep string) error {
		if _, err := url.Parse(ep); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		return nil
	})
}
