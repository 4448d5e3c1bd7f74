package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/doctor"
	"github.com/colonyops/taskgraph/internal/core/styles"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *taskgraph.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *taskgraph.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on configuration, storage and the task graph",
		UsageText:   "taskgraph doctor [options]",
		Description: "Runs diagnostic checks on the configuration file, the storage backend and the task graph (dangling dependencies, dependency cycles, overdue tasks).",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., remove dependencies on deleted tasks)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	checks := []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewStorageCheck(cfg.Storage.Backend, cmd.app.Store, cmd.app.DB),
		doctor.NewGraphCheck(cmd.app.Graph, cmd.autofix),
	}

	results := doctor.RunAll(ctx, checks)
	counts := doctor.Summarize(results)

	if cmd.format == "json" {
		out := doctorReport{Healthy: counts.Healthy(), Summary: counts, Checks: results}
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		cmd.outputText(c.Root().Writer, results, counts)
	}

	if !counts.Healthy() {
		return fmt.Errorf("%d check(s) failed", counts.Failed)
	}
	return nil
}

type doctorReport struct {
	Healthy bool            `json:"healthy"`
	Summary doctor.Counts   `json:"summary"`
	Checks  []doctor.Result `json:"checks"`
}

func (cmd *DoctorCmd) outputText(w io.Writer, results []doctor.Result, counts doctor.Counts) {
	divider := styles.TextMutedStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w, styles.TextPrimaryBoldStyle.Render("taskgraph doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, styles.TextBoldStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.TextMutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.TextSuccessStyle.Render(styles.IconPass)
			case doctor.StatusWarn:
				icon = styles.TextWarningStyle.Render(styles.IconWarn)
			case doctor.StatusFail:
				icon = styles.TextErrorStyle.Render(styles.IconFail)
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		styles.TextSuccessStyle.Render(fmt.Sprintf("%d passed", counts.Passed)),
		styles.TextWarningStyle.Render(fmt.Sprintf("%d warnings", counts.Warned)),
		styles.TextErrorStyle.Render(fmt.Sprintf("%d failed", counts.Failed)),
	)

	if !cmd.autofix && counts.Fixable > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render(fmt.Sprintf("Run 'taskgraph doctor --autofix' to fix %d issue(s)", counts.Fixable)))
	}
}
