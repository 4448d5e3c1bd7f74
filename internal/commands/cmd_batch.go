package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/core/logging"
	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/pkg/iojson"
	"github.com/colonyops/taskgraph/pkg/randid"
)

type BatchCmd struct {
	flags *Flags
	app   *taskgraph.App
	fr    *iojson.FileReader[BatchInput]
	list  string
}

func NewBatchCmd(flags *Flags, app *taskgraph.App) *BatchCmd {
	return &BatchCmd{
		flags: flags,
		app:   app,
		fr:    &iojson.FileReader[BatchInput]{},
	}
}

func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "batch",
		Usage: "Create multiple linked tasks from JSON input",
		UsageText: `taskgraph batch [options]

Read from stdin:
  echo '{"tasks":[{"ref":"a","title":"Design"},{"title":"Build","depends_on_refs":["a"]}]}' | taskgraph batch

Read from file:
  taskgraph batch -f plan.json`,
		Description: `Creates tasks from a JSON specification, in order.

Unlike import, batch items can point at each other: "ref" names an item
inside the batch, and later items use "parent_ref" and "depends_on_refs"
to link to it. Refs must be defined before they are used.

Processing stops after 3 failures. Tasks not attempted are marked as skipped.

Input JSON schema:
  {
    "tasks": [
      {
        "ref": "optional-local-name",
        "title": "required",
        "description": "optional",
        "status": "pending",
        "priority": "medium",
        "list_id": "optional",
        "parent_id": "optional existing task id",
        "parent_ref": "optional ref of an earlier item",
        "dependencies": ["existing task ids"],
        "depends_on_refs": ["refs of earlier items"],
        "tags": ["optional"]
      }
    ]
  }

Output is JSON with a batch ID and a result for each item.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
			&cli.StringFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "default list for items without list_id or parent",
				Destination: &cmd.list,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	batchID := randid.Generate(6)
	logger := logging.Component("batch").With().Str("batch_id", batchID).Logger()

	input, err := cmd.fr.Read()
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		return fmt.Errorf("read input: %w", err)
	}

	if err := input.Validate(); err != nil {
		logger.Error().Err(err).Msg("input validation failed")
		return fmt.Errorf("invalid input: %w", err)
	}

	logger.Info().Int("tasks", len(input.Tasks)).Msg("starting batch")

	output := BatchOutput{
		BatchID: batchID,
		Results: make([]BatchResult, 0, len(input.Tasks)),
	}

	refs := make(map[string]string)
	failures := 0
	for i, item := range input.Tasks {
		if failures >= maxFailures {
			logger.Warn().Int("index", i).Msg("skipping remaining tasks due to failure threshold")
			for j := i; j < len(input.Tasks); j++ {
				output.Results = append(output.Results, BatchResult{
					Index:  j,
					Ref:    input.Tasks[j].Ref,
					Title:  input.Tasks[j].Title,
					Status: StatusSkipped,
				})
			}
			break
		}

		result := cmd.createTask(ctx, i, item, refs)
		output.Results = append(output.Results, result)

		if result.Status == StatusFailed {
			failures++
			logger.Error().Int("index", i).Str("error", result.Error).Msg("task creation failed")
			continue
		}
		if item.Ref != "" {
			refs[item.Ref] = result.TaskID
		}
	}

	logger.Info().
		Int("total", len(input.Tasks)).
		Int("created", countByStatus(output.Results, StatusCreated)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("batch processing complete")

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, output)
}

func (cmd *BatchCmd) createTask(ctx context.Context, index int, item BatchTask, refs map[string]string) BatchResult {
	result := BatchResult{Index: index, Ref: item.Ref, Title: item.Title}

	in, err := item.resolve(refs)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}
	if in.ListID == "" && in.ParentID == "" {
		in.ListID = cmd.list
	}

	created, err := cmd.app.Graph.CreateTask(ctx, in)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	result.TaskID = created.ID
	result.Status = StatusCreated
	return result
}

const (
	StatusCreated = "created" // StatusCreated indicates the task was created successfully.
	StatusFailed  = "failed"  // StatusFailed indicates the task creation failed.
	StatusSkipped = "skipped" // StatusSkipped indicates the task was not attempted due to failure threshold.
	maxFailures   = 3         // maxFailures is the number of failures before stopping batch processing.
)

// errUnresolvedRef marks an item whose referenced item was not created.
var errUnresolvedRef = errors.New("referenced batch item was not created")

// BatchInput is the JSON input schema for batch task creation.
type BatchInput struct {
	Tasks []BatchTask `json:"tasks"`
}

// Validate checks field constraints and that every ref is unique and defined
// before it is used.
func (b BatchInput) Validate() error {
	if len(b.Tasks) == 0 {
		return criterio.NewFieldErrors("tasks", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool)

	for i, item := range b.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)

		if err := item.Input.Validate(); err != nil {
			errs = errs.Append(field, err)
			continue
		}

		if item.ParentRef != "" && item.ParentID != "" {
			errs = errs.Append(field+".parent_ref", fmt.Errorf("cannot be combined with parent_id"))
		}
		if item.ParentRef != "" && !seen[item.ParentRef] {
			errs = errs.Append(field+".parent_ref", fmt.Errorf("unknown ref %q", item.ParentRef))
		}
		for _, ref := range item.DependsOnRefs {
			if !seen[ref] {
				errs = errs.Append(field+".depends_on_refs", fmt.Errorf("unknown ref %q", ref))
			}
		}

		if item.Ref != "" {
			if seen[item.Ref] {
				errs = errs.Append(field+".ref", fmt.Errorf("duplicate ref %q", item.Ref))
				continue
			}
			seen[item.Ref] = true
		}
	}

	return errs.ToError()
}

// BatchTask defines a single task to create.
type BatchTask struct {
	task.Input

	Ref           string   `json:"ref,omitempty"`
	ParentRef     string   `json:"parent_ref,omitempty"`
	DependsOnRefs []string `json:"depends_on_refs,omitempty"`
}

// resolve returns the task input with refs replaced by created task ids.
func (item BatchTask) resolve(refs map[string]string) (task.Input, error) {
	in := item.Input
	in.Dependencies = append([]string(nil), item.Dependencies...)

	if item.ParentRef != "" {
		id, ok := refs[item.ParentRef]
		if !ok {
			return in, fmt.Errorf("parent_ref %q: %w", item.ParentRef, errUnresolvedRef)
		}
		in.ParentID = id
	}

	for _, ref := range item.DependsOnRefs {
		id, ok := refs[ref]
		if !ok {
			return in, fmt.Errorf("depends_on_refs %q: %w", ref, errUnresolvedRef)
		}
		in.Dependencies = append(in.Dependencies, id)
	}

	return in, nil
}

// BatchResult is the output for a single task creation attempt.
type BatchResult struct {
	Index  int    `json:"index"`
	Ref    string `json:"ref,omitempty"`
	Title  string `json:"title"`
	TaskID string `json:"task_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchOutput is the JSON output schema.
type BatchOutput struct {
	BatchID string        `json:"batch_id"`
	Results []BatchResult `json:"results"`
}

func countByStatus(results []BatchResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
