package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskgraph/internal/core/config"
)

// ConfigCheck reports on the config file and the result of deep validation.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.path); {
	case c.path == "":
		result.Items = append(result.Items, CheckItem{Label: "config file", Status: StatusPass, Detail: "using defaults"})
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{Label: "config file", Status: StatusPass, Detail: "not found, using defaults"})
	default:
		result.Items = append(result.Items, CheckItem{Label: "config file", Status: StatusPass, Detail: c.path})
	}

	if err := c.cfg.ValidateDeep(c.path); err != nil {
		var fe criterio.FieldErrors
		if errors.As(err, &fe) {
			for _, e := range fe {
				result.Items = append(result.Items, CheckItem{Label: e.Field, Status: StatusFail, Detail: e.Err.Error()})
			}
		} else {
			result.Items = append(result.Items, CheckItem{Label: "validation", Status: StatusFail, Detail: err.Error()})
		}
	} else {
		result.Items = append(result.Items, CheckItem{Label: "validation", Status: StatusPass})
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label = fmt.Sprintf("%s (%s)", w.Category, w.Item)
		}
		result.Items = append(result.Items, CheckItem{Label: label, Status: StatusWarn, Detail: w.Message})
	}

	return result
}
