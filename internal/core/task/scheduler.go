package task

import (
	"cmp"
	"slices"
)

// Lookup resolves a task id against the whole graph.
type Lookup func(id string) (Task, bool)

// SelectNext returns the task that should be worked on next.
//
// Candidates are pending or awaiting_approval tasks, ordered by priority
// (urgent first) and then by creation time (earliest first). Ties keep the
// order of the input slice, so callers should pass tasks in creation order.
//
// The first awaiting_approval candidate is returned regardless of its
// dependencies: an approval gate blocks the graph until a human resolves it.
// Otherwise the first candidate whose dependencies all exist and are completed
// wins. A dependency on a deleted task is never satisfied.
//
// SelectNext does not mutate its arguments.
func SelectNext(tasks []Task, lookup Lookup) (Task, bool) {
	candidates := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == StatusPending || t.Status == StatusAwaitingApproval {
			candidates = append(candidates, t)
		}
	}

	slices.SortStableFunc(candidates, func(a, b Task) int {
		if c := cmp.Compare(b.Priority.Weight(), a.Priority.Weight()); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	for _, t := range candidates {
		if t.Status == StatusAwaitingApproval {
			return t, true
		}
	}

	for _, t := range candidates {
		if DependenciesMet(t, lookup) {
			return t, true
		}
	}

	return Task{}, false
}

// DependenciesMet reports whether every dependency of t resolves to a
// completed task.
func DependenciesMet(t Task, lookup Lookup) bool {
	for _, id := range t.Dependencies {
		dep, ok := lookup(id)
		if !ok || dep.Status != StatusCompleted {
			return false
		}
	}
	return true
}
