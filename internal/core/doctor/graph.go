package doctor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/colonyops/taskgraph/internal/core/task"
)

// Graph is the part of the task graph the check reads and repairs.
type Graph interface {
	GetAllTasks(listID string) []task.Task
	UpdateTask(ctx context.Context, id string, patch task.Patch) (task.Task, error)
}

// GraphCheck looks for tasks the scheduler can never pick: dependencies on
// deleted tasks and dependency cycles. It also reports overdue work. With
// autofix, dangling dependencies are removed.
type GraphCheck struct {
	graph   Graph
	autofix bool
	now     func() time.Time
}

// NewGraphCheck creates a new task graph check.
func NewGraphCheck(g Graph, autofix bool) *GraphCheck {
	return &GraphCheck{graph: g, autofix: autofix, now: time.Now}
}

func (c *GraphCheck) Name() string {
	return "Task Graph"
}

func (c *GraphCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	tasks := c.graph.GetAllTasks("")

	result.Items = append(result.Items, CheckItem{
		Label:  "tasks",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d total", len(tasks)),
	})

	result.Items = append(result.Items, c.checkDangling(ctx, tasks)...)
	result.Items = append(result.Items, checkCycles(tasks)...)

	now := c.now()
	overdue := 0
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			overdue++
		}
	}
	if overdue > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "overdue",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d task(s) past their due date", overdue),
		})
	} else {
		result.Items = append(result.Items, CheckItem{Label: "overdue", Status: StatusPass, Detail: "none"})
	}

	return result
}

func (c *GraphCheck) checkDangling(ctx context.Context, tasks []task.Task) []CheckItem {
	exists := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		exists[t.ID] = true
	}

	var items []CheckItem
	for _, t := range tasks {
		var missing, kept []string
		for _, dep := range t.Dependencies {
			if exists[dep] {
				kept = append(kept, dep)
			} else {
				missing = append(missing, dep)
			}
		}
		if len(missing) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%s)", t.Title, t.ID)
		if !c.autofix {
			items = append(items, CheckItem{
				Label:   label,
				Status:  StatusWarn,
				Detail:  fmt.Sprintf("depends on deleted task(s) %s and can never run", strings.Join(missing, ", ")),
				Fixable: true,
			})
			continue
		}

		if kept == nil {
			kept = []string{}
		}
		if _, err := c.graph.UpdateTask(ctx, t.ID, task.Patch{Dependencies: &kept}); err != nil {
			items = append(items, CheckItem{Label: label, Status: StatusFail, Detail: fmt.Sprintf("remove dangling dependencies: %v", err)})
			continue
		}
		items = append(items, CheckItem{
			Label:  label,
			Status: StatusPass,
			Detail: fmt.Sprintf("removed dependencies on deleted task(s) %s", strings.Join(missing, ", ")),
		})
	}

	if len(items) == 0 {
		items = append(items, CheckItem{Label: "dangling dependencies", Status: StatusPass, Detail: "none"})
	}
	return items
}

func checkCycles(tasks []task.Task) []CheckItem {
	cycles := dependencyCycles(tasks)
	if len(cycles) == 0 {
		return []CheckItem{{Label: "dependency cycles", Status: StatusPass, Detail: "none"}}
	}

	items := make([]CheckItem, 0, len(cycles))
	for _, cycle := range cycles {
		path := append(slices.Clone(cycle), cycle[0])
		items = append(items, CheckItem{
			Label:  "dependency cycle",
			Status: StatusWarn,
			Detail: strings.Join(path, " -> "),
		})
	}
	return items
}

// dependencyCycles returns the cycles in the dependency relation, each as the
// ids along the cycle starting from the task first reached. Dependencies on
// missing tasks are ignored. The walk is iterative so deep chains are safe.
func dependencyCycles(tasks []task.Task) [][]string {
	const (
		unvisited = iota
		onStack
		done
	)

	deps := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		deps[t.ID] = t.Dependencies
	}

	type frame struct {
		id   string
		next int
	}

	state := make(map[string]int, len(tasks))
	var cycles [][]string

	for _, root := range tasks {
		if state[root.ID] != unvisited {
			continue
		}

		state[root.ID] = onStack
		stack := []frame{{id: root.ID}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := deps[top.id]
			if top.next == len(edges) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			dep := edges[top.next]
			top.next++
			if _, ok := deps[dep]; !ok {
				continue
			}

			switch state[dep] {
			case unvisited:
				state[dep] = onStack
				stack = append(stack, frame{id: dep})
			case onStack:
				var cycle []string
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append(cycle, stack[i].id)
					if stack[i].id == dep {
						break
					}
				}
				slices.Reverse(cycle)
				cycles = append(cycles, cycle)
			}
		}
	}

	return cycles
}
