package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/taskgraph"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests the ids of tasks
// that are not finished, each followed by its title. Set this as the
// ShellComplete field on any cli.Command that accepts task ids as arguments.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(app *taskgraph.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Graph == nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range app.Graph.GetAllTasks("") {
			if t.Status.IsTerminal() {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Title)
		}
	}
}
