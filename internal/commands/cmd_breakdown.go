package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

type BreakdownCmd struct {
	flags *Flags
	app   *taskgraph.App
}

// NewBreakdownCmd creates a new breakdown command.
func NewBreakdownCmd(flags *Flags, app *taskgraph.App) *BreakdownCmd {
	return &BreakdownCmd{flags: flags, app: app}
}

// Register adds the breakdown command to the application.
func (cmd *BreakdownCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "breakdown",
		Usage:     "Split a goal into a chain of subtasks",
		UsageText: "taskgraph breakdown <id>",
		Description: `Asks the configured planner for steps and creates them as subtasks of
the goal, each depending on the one before. Goals matching a critical
pattern get an approval task at the head of the chain. The goal moves to
in_progress.

Created subtasks are printed as JSON lines.`,
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *BreakdownCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("goal task id required")
	}

	subtasks, err := cmd.app.Graph.Breakdown(ctx, id)
	if err != nil {
		return fmt.Errorf("breakdown: %w", err)
	}

	for _, t := range subtasks {
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}
	return nil
}
