package taskgraph

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/task"
)

// CreateTask adds a task to the graph. The list defaults to the parent's list
// when a parent is given and to the current list otherwise.
func (g *Graph) CreateTask(ctx context.Context, in task.Input) (created task.Task, err error) {
	ctx, span := g.startSpan(ctx, "create_task", attribute.String("list_id", in.ListID))
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return task.Task{}, err
	}

	err = g.mutate(ctx, func(now time.Time) error {
		if in.ParentID != "" {
			parent, ok := g.tasks[in.ParentID]
			if !ok {
				return notFound("parent task", in.ParentID)
			}
			if in.ListID == "" {
				in.ListID = parent.ListID
			}
		}
		if in.ListID == "" {
			in.ListID = g.currentListID
		}
		if _, ok := g.lists[in.ListID]; !ok {
			return notFound("list", in.ListID)
		}

		created = g.insert(in, now)
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}

	span.SetAttributes(attribute.String("task_id", created.ID))
	g.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: created})
	return created, nil
}

// insert stores a new task built from a validated input whose list and parent
// are known to exist. Callers hold the write lock.
func (g *Graph) insert(in task.Input, now time.Time) task.Task {
	t := in.Build(g.newID(), now)

	for i := range t.Notes {
		n := &t.Notes[i]
		if n.ID == "" {
			n.ID = g.newNoteID(t.Notes)
		}
		if !n.Type.IsValid() {
			n.Type = task.NoteTypeUser
		}
		if n.Timestamp.IsZero() {
			n.Timestamp = now
		}
	}

	if in.Status != "" && in.Status != t.Status {
		task.Transition(&t, in.Status, now, &g.activeTaskID)
	}

	g.tasks[t.ID] = &t
	g.order = append(g.order, t.ID)

	if parent, ok := g.tasks[t.ParentID]; ok {
		parent.Subtasks = append(parent.Subtasks, t.ID)
		parent.UpdatedAt = now
	}

	return t.Clone()
}

func (g *Graph) newNoteID(notes []task.Note) string {
	return g.newShortID(func(id string) bool {
		return slices.ContainsFunc(notes, func(n task.Note) bool { return n.ID == id })
	})
}

// UpdateTask applies a shallow patch. A status change goes through
// task.Transition so its side effects are never skipped.
func (g *Graph) UpdateTask(ctx context.Context, id string, patch task.Patch) (updated task.Task, err error) {
	ctx, span := g.startSpan(ctx, "update_task", attribute.String("task_id", id))
	defer func() { endSpan(span, err) }()

	if err := patch.Validate(); err != nil {
		return task.Task{}, err
	}

	err = g.mutate(ctx, func(now time.Time) error {
		t, ok := g.tasks[id]
		if !ok {
			return notFound("task", id)
		}
		if err := g.checkPatch(t, patch); err != nil {
			return err
		}

		g.applyPatch(t, patch, now)
		updated = t.Clone()
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}

	g.bus.PublishTaskUpdated(eventbus.TaskUpdatedPayload{Task: updated})
	return updated, nil
}

// checkPatch validates the parts of a patch that depend on the rest of the
// graph. It never mutates.
func (g *Graph) checkPatch(t *task.Task, p task.Patch) error {
	if p.Dependencies != nil && slices.Contains(*p.Dependencies, t.ID) {
		return task.ValidationErrorf("dependencies", "task %q cannot depend on itself", t.ID)
	}

	if p.ListID != nil {
		if _, ok := g.lists[*p.ListID]; !ok {
			return notFound("list", *p.ListID)
		}
	}

	if p.ParentID != nil && *p.ParentID != t.ParentID && *p.ParentID != "" {
		newParent := *p.ParentID
		if newParent == t.ID {
			return task.ValidationErrorf("parent_id", "task %q cannot be its own parent", t.ID)
		}
		if _, ok := g.tasks[newParent]; !ok {
			return notFound("parent task", newParent)
		}
		if g.isAncestor(t.ID, newParent) {
			return task.ValidationErrorf("parent_id", "moving %q under %q would create a cycle", t.ID, newParent)
		}
	}

	return nil
}

// isAncestor reports whether ancestor appears on the parent chain of id.
func (g *Graph) isAncestor(ancestor, id string) bool {
	seen := make(map[string]bool)
	for cur := g.tasks[id]; cur != nil && cur.ParentID != ""; cur = g.tasks[cur.ParentID] {
		if cur.ParentID == ancestor {
			return true
		}
		if seen[cur.ID] {
			return false
		}
		seen[cur.ID] = true
	}
	return false
}

// applyPatch writes a checked patch onto t. Callers hold the write lock.
func (g *Graph) applyPatch(t *task.Task, p task.Patch, now time.Time) {
	p.Apply(t)

	if p.ListID != nil {
		t.ListID = *p.ListID
	}

	if p.ParentID != nil && *p.ParentID != t.ParentID {
		g.detach(t, now)
		t.ParentID = *p.ParentID
		if parent, ok := g.tasks[t.ParentID]; ok {
			parent.Subtasks = append(parent.Subtasks, t.ID)
			parent.UpdatedAt = now
		}
	}

	if p.Status != nil {
		task.Transition(t, *p.Status, now, &g.activeTaskID)
	} else {
		t.UpdatedAt = now
	}
}

// detach removes t from its parent's subtasks.
func (g *Graph) detach(t *task.Task, now time.Time) {
	parent, ok := g.tasks[t.ParentID]
	if !ok {
		return
	}
	parent.Subtasks = slices.DeleteFunc(parent.Subtasks, func(id string) bool { return id == t.ID })
	parent.UpdatedAt = now
}

// DeleteTask removes a task and all of its descendants. It returns the ids of
// every removed task, children before their parents.
func (g *Graph) DeleteTask(ctx context.Context, id string) (removed []string, err error) {
	ctx, span := g.startSpan(ctx, "delete_task", attribute.String("task_id", id))
	defer func() { endSpan(span, err) }()

	err = g.mutate(ctx, func(now time.Time) error {
		if _, ok := g.tasks[id]; !ok {
			return notFound("task", id)
		}
		removed = g.remove(id, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("removed", len(removed)))
	g.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: id, RemovedIDs: removed})
	return removed, nil
}

// subtree lists id and its descendants with every child ahead of its parent.
// It walks an explicit stack so deep trees cannot exhaust the call stack.
func (g *Graph) subtree(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	stack := []string{id}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)

		t, ok := g.tasks[cur]
		if !ok {
			continue
		}
		for _, child := range t.Subtasks {
			if !seen[child] {
				seen[child] = true
				stack = append(stack, child)
			}
		}
	}

	slices.Reverse(out)
	return out
}

// remove deletes id and its subtree. Callers hold the write lock.
func (g *Graph) remove(id string, now time.Time) []string {
	ids := g.subtree(id)
	gone := make(map[string]bool, len(ids))
	for _, rid := range ids {
		gone[rid] = true
	}

	if root, ok := g.tasks[id]; ok && !gone[root.ParentID] {
		g.detach(root, now)
	}

	for _, rid := range ids {
		delete(g.tasks, rid)
	}
	g.order = slices.DeleteFunc(g.order, func(oid string) bool { return gone[oid] })

	if gone[g.activeTaskID] {
		g.activeTaskID = ""
	}
	return ids
}

// BulkUpdateTasks applies one patch to every id that exists; unknown ids are
// skipped. The patch is checked against every target before any is changed.
// Nothing is persisted or announced when no id matched.
func (g *Graph) BulkUpdateTasks(ctx context.Context, ids []string, patch task.Patch) (updated []task.Task, err error) {
	ctx, span := g.startSpan(ctx, "bulk_update_tasks", attribute.Int("requested", len(ids)))
	defer func() { endSpan(span, err) }()

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	targets := make([]*task.Task, 0, len(ids))
	for _, id := range dedupeIDs(ids) {
		if t, ok := g.tasks[id]; ok {
			targets = append(targets, t)
		}
	}

	for _, t := range targets {
		if err := g.checkPatch(t, patch); err != nil {
			g.mu.Unlock()
			return nil, err
		}
	}

	if len(targets) > 0 {
		now := g.now()
		for _, t := range targets {
			g.applyPatch(t, patch, now)
			updated = append(updated, t.Clone())
		}
		g.persist(ctx)
	}
	g.mu.Unlock()

	span.SetAttributes(attribute.Int("updated", len(updated)))
	if len(updated) > 0 {
		g.bus.PublishTasksUpdated(eventbus.TasksUpdatedPayload{Tasks: updated})
	}
	return updated, nil
}

// BulkDeleteTasks deletes every id that still exists, including descendants,
// and returns all removed ids. Unknown ids are skipped.
func (g *Graph) BulkDeleteTasks(ctx context.Context, ids []string) (removed []string, err error) {
	ctx, span := g.startSpan(ctx, "bulk_delete_tasks", attribute.Int("requested", len(ids)))
	defer func() { endSpan(span, err) }()

	g.mu.Lock()
	now := g.now()
	for _, id := range dedupeIDs(ids) {
		if _, ok := g.tasks[id]; ok {
			removed = append(removed, g.remove(id, now)...)
		}
	}
	if len(removed) > 0 {
		g.persist(ctx)
	}
	g.mu.Unlock()

	span.SetAttributes(attribute.Int("removed", len(removed)))
	if len(removed) > 0 {
		g.bus.PublishTasksDeleted(eventbus.TasksDeletedPayload{TaskIDs: removed})
	}
	return removed, nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// AddNote appends a note to a task. An empty noteType means a user note.
func (g *Graph) AddNote(ctx context.Context, taskID, content string, noteType task.NoteType) (note task.Note, err error) {
	ctx, span := g.startSpan(ctx, "add_note", attribute.String("task_id", taskID))
	defer func() { endSpan(span, err) }()

	content = strings.TrimSpace(content)
	if content == "" {
		return task.Note{}, task.ValidationErrorf("content", "note content is required")
	}
	if noteType == "" {
		noteType = task.NoteTypeUser
	}
	if !noteType.IsValid() {
		return task.Note{}, task.ValidationErrorf("type", "unknown note type %q", noteType)
	}

	var updated task.Task
	err = g.mutate(ctx, func(now time.Time) error {
		t, ok := g.tasks[taskID]
		if !ok {
			return notFound("task", taskID)
		}

		note = g.appendNote(t, content, noteType, now)
		updated = t.Clone()
		return nil
	})
	if err != nil {
		return task.Note{}, err
	}

	g.bus.PublishTaskUpdated(eventbus.TaskUpdatedPayload{Task: updated})
	return note, nil
}

func (g *Graph) appendNote(t *task.Task, content string, noteType task.NoteType, now time.Time) task.Note {
	note := task.Note{
		ID:        g.newNoteID(t.Notes),
		Content:   content,
		Type:      noteType,
		Timestamp: now,
	}
	t.Notes = append(t.Notes, note)
	t.UpdatedAt = now
	return note
}
