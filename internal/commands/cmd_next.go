package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

// NextCmd implements the next and stats commands, the scheduler's read side.
type NextCmd struct {
	flags *Flags
	app   *taskgraph.App

	list string
	all  bool
}

// NewNextCmd creates the next and stats commands.
func NewNextCmd(flags *Flags, app *taskgraph.App) *NextCmd {
	return &NextCmd{flags: flags, app: app}
}

// Register adds the next and stats commands to the application.
func (cmd *NextCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "next",
			Usage:     "Show the task to work on next",
			UsageText: "taskgraph next [--list <id> | --all]",
			Description: `Picks the pending task with the highest priority whose dependencies are
all completed. Ties go to the oldest task.

Prints {"found":false} when nothing is actionable.`,
			Flags:  cmd.scopeFlags(),
			Action: cmd.runNext,
		},
		&cli.Command{
			Name:      "stats",
			Usage:     "Count tasks by status",
			UsageText: "taskgraph stats [--list <id> | --all]",
			Flags:     cmd.scopeFlags(),
			Action:    cmd.runStats,
		},
	)

	return app
}

// scopeFlags returns the --list and --all flags used by next and stats.
func (cmd *NextCmd) scopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "list",
			Aliases:     []string{"l"},
			Usage:       "list id (defaults to the current list)",
			Destination: &cmd.list,
		},
		&cli.BoolFlag{
			Name:        "all",
			Aliases:     []string{"a"},
			Usage:       "consider every list",
			Destination: &cmd.all,
		},
	}
}

type nextResult struct {
	Found bool       `json:"found"`
	Task  *task.Task `json:"task,omitempty"`
}

func (cmd *NextCmd) runNext(_ context.Context, c *cli.Command) error {
	listID, err := resolveList(cmd.app.Graph, cmd.list, cmd.all)
	if err != nil {
		return err
	}

	var out nextResult
	if t, ok := cmd.app.Graph.NextTask(listID); ok {
		out = nextResult{Found: true, Task: &t}
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out)
}

func (cmd *NextCmd) runStats(_ context.Context, c *cli.Command) error {
	listID, err := resolveList(cmd.app.Graph, cmd.list, cmd.all)
	if err != nil {
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, cmd.app.Graph.GetStats(listID))
}
