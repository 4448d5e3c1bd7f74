package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
)

// TaskCmd implements the taskgraph task command group.
type TaskCmd struct {
	flags *Flags
	app   *taskgraph.App

	// add flags
	addDescription string
	addPriority    string
	addStatus      string
	addList        string
	addParent      string
	addDeps        []string
	addTags        []string
	addDue         string
	addEstimate    int

	// ls flags
	lsList   string
	lsStatus string
	lsAll    bool
	lsTags   []string

	// note flags
	noteType string
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *taskgraph.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Create, inspect and change tasks",
		Description: `Task commands operate on the task graph.

Output is JSON. New tasks land in the current list unless --list or
--parent says otherwise.

Examples:
  taskgraph task add "Write report" --priority high
  taskgraph task ls
  taskgraph task update <id> --status in_progress
  taskgraph task note <id> "blocked on review"
  taskgraph task rm <id>`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.updateCmd(),
			cmd.rmCmd(),
			cmd.noteCmd(),
			cmd.showCmd(),
			cmd.lsCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		UsageText: "taskgraph task add <title> [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description",
				Destination: &cmd.addDescription,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (low, medium, high, urgent)",
				Destination: &cmd.addPriority,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "initial status (defaults to pending)",
				Destination: &cmd.addStatus,
			},
			&cli.StringFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "list id (defaults to the parent's list, then the current list)",
				Destination: &cmd.addList,
			},
			&cli.StringFlag{
				Name:        "parent",
				Usage:       "parent task id",
				Destination: &cmd.addParent,
			},
			&cli.StringSliceFlag{
				Name:        "depends-on",
				Usage:       "id of a task that must complete first (repeatable)",
				Destination: &cmd.addDeps,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "tag (repeatable)",
				Destination: &cmd.addTags,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD or RFC 3339)",
				Destination: &cmd.addDue,
			},
			&cli.IntFlag{
				Name:        "estimate",
				Usage:       "estimated time in minutes",
				Destination: &cmd.addEstimate,
			},
			&cli.FloatFlag{
				Name:  "confidence",
				Usage: "confidence between 0 and 1 (defaults to 1)",
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Change one or more tasks",
		UsageText: "taskgraph task update <id> [<id>...] [options]",
		Description: `Applies the given fields to every named task. Only flags that are set
are changed. With more than one id, unknown ids are skipped and one
tasks_updated event is published.

Examples:
  taskgraph task update abc --status completed
  taskgraph task update abc def --priority urgent
  taskgraph task update abc --parent ""`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "new title"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "new description"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "new status"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "new priority"},
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "move to list"},
			&cli.StringFlag{Name: "parent", Usage: "new parent id (empty to detach)"},
			&cli.StringSliceFlag{Name: "depends-on", Usage: "replace dependencies (repeatable)"},
			&cli.BoolFlag{Name: "clear-deps", Usage: "remove all dependencies"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "replace tags (repeatable)"},
			&cli.StringFlag{Name: "due", Usage: "due date (YYYY-MM-DD or RFC 3339)"},
			&cli.BoolFlag{Name: "clear-due", Usage: "remove the due date"},
			&cli.IntFlag{Name: "estimate", Usage: "estimated time in minutes"},
			&cli.IntFlag{Name: "actual", Usage: "actual time in minutes"},
			&cli.FloatFlag{Name: "confidence", Usage: "confidence between 0 and 1"},
		},
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.runUpdate,
	}
}

func (cmd *TaskCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Aliases:       []string{"delete"},
		Usage:         "Delete tasks and their subtasks",
		UsageText:     "taskgraph task rm <id> [<id>...]",
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.runRm,
	}
}

func (cmd *TaskCmd) noteCmd() *cli.Command {
	return &cli.Command{
		Name:      "note",
		Usage:     "Append a note to a task",
		UsageText: "taskgraph task note <id> <content> [--type user|ai|system]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Usage:       "note author (user, ai, system)",
				Value:       string(task.NoteTypeUser),
				Destination: &cmd.noteType,
			},
		},
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.runNote,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         "Print a task",
		UsageText:     "taskgraph task show <id>",
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.runShow,
	}
}

func (cmd *TaskCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks as JSON lines",
		UsageText: "taskgraph task ls [--list <id> | --all] [--status <status>] [--tag <glob>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "list id (defaults to the current list)",
				Destination: &cmd.lsList,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include every list",
				Destination: &cmd.lsAll,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "only tasks with this status",
				Destination: &cmd.lsStatus,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "only tasks with a tag matching this glob, e.g. 'area/**' (repeatable)",
				Destination: &cmd.lsTags,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	title := strings.Join(c.Args().Slice(), " ")

	in := task.Input{
		Title:         title,
		Description:   cmd.addDescription,
		ListID:        cmd.addList,
		ParentID:      cmd.addParent,
		Dependencies:  cmd.addDeps,
		Tags:          cmd.addTags,
		EstimatedTime: cmd.addEstimate,
	}

	if cmd.addPriority != "" {
		p, err := task.ParsePriority(cmd.addPriority)
		if err != nil {
			return err
		}
		in.Priority = p
	}
	if cmd.addStatus != "" {
		s, err := task.ParseStatus(cmd.addStatus)
		if err != nil {
			return err
		}
		in.Status = s
	}
	if cmd.addDue != "" {
		due, err := parseDate(cmd.addDue)
		if err != nil {
			return err
		}
		in.DueDate = &due
	}
	if c.IsSet("confidence") {
		v := c.Float("confidence")
		in.Confidence = &v
	}

	created, err := cmd.app.Graph.CreateTask(ctx, in)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, created)
}

func (cmd *TaskCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("task id required")
	}

	patch, err := patchFromFlags(c)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update; set at least one field flag")
	}

	if len(ids) == 1 {
		updated, err := cmd.app.Graph.UpdateTask(ctx, ids[0], patch)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, updated)
	}

	updated, err := cmd.app.Graph.BulkUpdateTasks(ctx, ids, patch)
	if err != nil {
		return fmt.Errorf("update tasks: %w", err)
	}
	for _, t := range updated {
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}
	return nil
}

// patchFromFlags builds a patch from the update flags the user set.
func patchFromFlags(c *cli.Command) (task.Patch, error) {
	var p task.Patch

	if c.IsSet("title") {
		v := c.String("title")
		p.Title = &v
	}
	if c.IsSet("description") {
		v := c.String("description")
		p.Description = &v
	}
	if c.IsSet("status") {
		s, err := task.ParseStatus(c.String("status"))
		if err != nil {
			return p, err
		}
		p.Status = &s
	}
	if c.IsSet("priority") {
		v, err := task.ParsePriority(c.String("priority"))
		if err != nil {
			return p, err
		}
		p.Priority = &v
	}
	if c.IsSet("list") {
		v := c.String("list")
		p.ListID = &v
	}
	if c.IsSet("parent") {
		v := c.String("parent")
		p.ParentID = &v
	}
	switch {
	case c.Bool("clear-deps"):
		deps := []string{}
		p.Dependencies = &deps
	case c.IsSet("depends-on"):
		deps := c.StringSlice("depends-on")
		p.Dependencies = &deps
	}
	if c.IsSet("tag") {
		tags := c.StringSlice("tag")
		p.Tags = &tags
	}
	if c.IsSet("due") {
		due, err := parseDate(c.String("due"))
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	p.ClearDueDate = c.Bool("clear-due")
	if c.IsSet("estimate") {
		v := c.Int("estimate")
		p.EstimatedTime = &v
	}
	if c.IsSet("actual") {
		v := c.Int("actual")
		p.ActualTime = &v
	}
	if c.IsSet("confidence") {
		v := c.Float("confidence")
		p.Confidence = &v
	}

	return p, nil
}

func (cmd *TaskCmd) runRm(ctx context.Context, c *cli.Command) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("task id required")
	}

	var (
		removed []string
		err     error
	)
	if len(ids) == 1 {
		removed, err = cmd.app.Graph.DeleteTask(ctx, ids[0])
	} else {
		removed, err = cmd.app.Graph.BulkDeleteTasks(ctx, ids)
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, map[string]any{"removed": removed})
}

func (cmd *TaskCmd) runNote(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: taskgraph task note <id> <content>")
	}

	id := c.Args().First()
	content := strings.Join(c.Args().Tail(), " ")

	note, err := cmd.app.Graph.AddNote(ctx, id, content, task.NoteType(cmd.noteType))
	if err != nil {
		return fmt.Errorf("add note: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, note)
}

func (cmd *TaskCmd) runShow(_ context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("task id required")
	}

	t, err := cmd.app.Graph.GetTask(id)
	if err != nil {
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, t)
}

func (cmd *TaskCmd) runLs(_ context.Context, c *cli.Command) error {
	var status task.Status
	if cmd.lsStatus != "" {
		s, err := task.ParseStatus(cmd.lsStatus)
		if err != nil {
			return err
		}
		status = s
	}

	for _, pattern := range cmd.lsTags {
		if !doublestar.ValidatePattern(pattern) {
			return task.ValidationErrorf("tag", "invalid glob %q", pattern)
		}
	}

	listID, err := resolveList(cmd.app.Graph, cmd.lsList, cmd.lsAll)
	if err != nil {
		return err
	}

	for _, t := range cmd.app.Graph.GetAllTasks(listID) {
		if status != "" && t.Status != status {
			continue
		}
		if len(cmd.lsTags) > 0 && !matchTags(cmd.lsTags, t.Tags) {
			continue
		}
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}

	return nil
}

// matchTags reports whether any tag matches any of the glob patterns. Tags
// are matched like paths, so "area/*" matches "area/api" but not
// "area/api/v2" while "area/**" matches both.
func matchTags(patterns, tags []string) bool {
	for _, pattern := range patterns {
		for _, tag := range tags {
			if ok, _ := doublestar.Match(pattern, tag); ok {
				return true
			}
		}
	}
	return false
}

// resolveList returns the list a read command should look at: the named list,
// every list when all is set (empty id), or the current list.
func resolveList(g *taskgraph.Graph, listID string, all bool) (string, error) {
	switch {
	case all:
		return "", nil
	case listID != "":
		if _, err := g.GetList(listID); err != nil {
			return "", err
		}
		return listID, nil
	default:
		return g.CurrentList().ID, nil
	}
}

// parseDate accepts a calendar date (midnight UTC) or an RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, task.ValidationErrorf("due_date", "invalid date %q; use YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}
