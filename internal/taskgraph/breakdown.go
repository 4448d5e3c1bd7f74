package taskgraph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/planner"
	"github.com/colonyops/taskgraph/internal/core/task"
)

// ApprovalPrefix starts the title of the approval gate created for critical goals.
const ApprovalPrefix = "Approve plan: "

// Breakdown expands a goal into a chain of subtasks. Each subtask is a child
// of the goal, lives in the goal's list and depends on the one before it.
// Critical goals get an awaiting_approval task at the head of the chain. The
// goal receives a system note and moves to in_progress.
func (g *Graph) Breakdown(ctx context.Context, goalID string) (subtasks []task.Task, err error) {
	ctx, span := g.startSpan(ctx, "breakdown", attribute.String("task_id", goalID))
	defer func() { endSpan(span, err) }()

	var goal task.Task
	err = g.mutate(ctx, func(now time.Time) error {
		gt, ok := g.tasks[goalID]
		if !ok {
			return notFound("task", goalID)
		}

		inputs, err := g.plan(gt)
		if err != nil {
			return err
		}

		prev := ""
		for _, in := range inputs {
			if prev != "" {
				in.Dependencies = []string{prev}
			}
			t := g.insert(in, now)
			subtasks = append(subtasks, t)
			prev = t.ID
		}

		g.appendNote(gt, fmt.Sprintf("Broke down into %d subtasks.", len(subtasks)), task.NoteTypeSystem, now)
		task.Transition(gt, task.StatusInProgress, now, &g.activeTaskID)
		goal = gt.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("subtasks", len(subtasks)))
	g.log.Debug().Str("task_id", goalID).Int("subtasks", len(subtasks)).Msg("goal broken down")

	for _, t := range subtasks {
		g.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: t})
	}
	g.bus.PublishTaskUpdated(eventbus.TaskUpdatedPayload{Task: goal})
	return subtasks, nil
}

// plan asks the planner for templates and turns them into validated inputs.
// Nothing is created when any template is invalid.
func (g *Graph) plan(goal *task.Task) ([]task.Input, error) {
	templates := g.planner.Plan(goal.Title)
	if len(templates) == 0 {
		templates = planner.Fallback(goal.Title)
	}

	inputs := make([]task.Input, 0, len(templates)+1)
	if g.planner.IsCritical(goal.Title) {
		inputs = append(inputs, task.Input{
			Title:       ApprovalPrefix + goal.Title,
			Description: approvalSummary(templates),
			Status:      task.StatusAwaitingApproval,
			Priority:    task.PriorityHigh,
		})
	}

	for _, tpl := range templates {
		in := task.Input{
			Title:       tpl.Title,
			Description: tpl.Description,
			Priority:    tpl.Priority,
		}
		if tpl.Confidence != nil {
			confidence := *tpl.Confidence
			in.Confidence = &confidence
		}
		inputs = append(inputs, in)
	}

	for i := range inputs {
		inputs[i].ListID = goal.ListID
		inputs[i].ParentID = goal.ID
		if err := inputs[i].Validate(); err != nil {
			return nil, fmt.Errorf("plan step %d for %q: %w", i+1, goal.Title, err)
		}
	}
	return inputs, nil
}

func approvalSummary(templates []planner.Template) string {
	var b strings.Builder
	b.WriteString("Review the proposed plan before any step runs:\n")
	for i, tpl := range templates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tpl.Title)
	}
	return b.String()
}
