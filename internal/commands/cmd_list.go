package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

// ListCmd implements the taskgraph list command group.
type ListCmd struct {
	flags *Flags
	app   *taskgraph.App

	// add flags
	addDescription string
	addColor       string
	addUse         bool
}

// NewListCmd creates a new list command.
func NewListCmd(flags *Flags, app *taskgraph.App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

// Register adds the list command to the application.
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "list",
		Usage: "Manage task lists",
		Description: `Lists group tasks. There is always a default list, and exactly one
list is current; new tasks go to the current list.

Examples:
  taskgraph list add "Work" --color "#3366ff" --use
  taskgraph list ls
  taskgraph list use <id>
  taskgraph list rm <id>`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a list",
				UsageText: "taskgraph list add <name> [--description <text>] [--color <#rrggbb>] [--use]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "description",
						Aliases:     []string{"d"},
						Usage:       "list description",
						Destination: &cmd.addDescription,
					},
					&cli.StringFlag{
						Name:        "color",
						Usage:       "display color as #rrggbb",
						Destination: &cmd.addColor,
					},
					&cli.BoolFlag{
						Name:        "use",
						Usage:       "make the new list current",
						Destination: &cmd.addUse,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "use",
				Usage:     "Make a list current",
				UsageText: "taskgraph list use <id>",
				Action:    cmd.runUse,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete an empty list",
				UsageText: "taskgraph list rm <id>",
				Action:    cmd.runRm,
			},
			{
				Name:      "ls",
				Usage:     "Show all lists as JSON lines",
				UsageText: "taskgraph list ls",
				Action:    cmd.runLs,
			},
		},
	})

	return app
}

func (cmd *ListCmd) runAdd(ctx context.Context, c *cli.Command) error {
	created, err := cmd.app.Graph.CreateList(ctx, task.ListInput{
		Name:        strings.Join(c.Args().Slice(), " "),
		Description: cmd.addDescription,
		Color:       cmd.addColor,
	})
	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}

	if cmd.addUse {
		if err := cmd.app.Graph.SetCurrentList(ctx, created.ID); err != nil {
			return fmt.Errorf("use list: %w", err)
		}
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, created)
}

func (cmd *ListCmd) runUse(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("list id required")
	}

	if err := cmd.app.Graph.SetCurrentList(ctx, id); err != nil {
		return fmt.Errorf("use list: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, cmd.app.Graph.CurrentList())
}

func (cmd *ListCmd) runRm(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("list id required")
	}

	if err := cmd.app.Graph.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, map[string]any{
		"removed": id,
		"current": cmd.app.Graph.CurrentList().ID,
	})
}

type listView struct {
	task.List
	Current bool       `json:"current"`
	Stats   task.Stats `json:"stats"`
}

func (cmd *ListCmd) runLs(_ context.Context, c *cli.Command) error {
	g := cmd.app.Graph
	current := g.CurrentList().ID

	for _, l := range g.Lists() {
		view := listView{
			List:    l,
			Current: l.ID == current,
			Stats:   g.GetStats(l.ID),
		}
		if err := iojson.WriteLine(c.Root().Writer, view); err != nil {
			return err
		}
	}

	return nil
}
