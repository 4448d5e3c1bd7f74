package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/config"
	"github.com/colonyops/taskgraph/internal/core/styles"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "taskgraph config validate [options]",
				Description: "Validates the configuration file, checking planner patterns, step templates, telemetry endpoint and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationIssue          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	report := validationReport{
		Errors:   issues(cfg.ValidateDeep(cmd.flags.ConfigPath)),
		Warnings: cfg.Warnings(),
	}
	report.Valid = len(report.Errors) == 0

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		writeReport(c.Root().Writer, report)
	}

	if !report.Valid {
		return fmt.Errorf("%d configuration error(s) found", len(report.Errors))
	}
	return nil
}

// issues flattens a validation error into one entry per field.
func issues(err error) []validationIssue {
	if err == nil {
		return nil
	}

	var fe criterio.FieldErrors
	if !errors.As(err, &fe) {
		return []validationIssue{{Message: err.Error()}}
	}

	out := make([]validationIssue, 0, len(fe))
	for _, e := range fe {
		out = append(out, validationIssue{Field: e.Field, Message: e.Err.Error()})
	}
	return out
}

func writeReport(w io.Writer, report validationReport) {
	for _, warn := range report.Warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextWarningStyle.Render("warning:"), warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render("  item: "+warn.Item))
		}
	}

	for _, e := range report.Errors {
		label := styles.TextErrorStyle.Render("error:")
		if e.Field != "" {
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", label, e.Field, e.Message)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", label, e.Message)
	}

	if report.Valid {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render("configuration is valid"))
	}
}
