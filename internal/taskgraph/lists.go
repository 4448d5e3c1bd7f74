package taskgraph

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/task"
)

// CreateList adds a list. The new list does not become current.
func (g *Graph) CreateList(ctx context.Context, in task.ListInput) (created task.List, err error) {
	ctx, span := g.startSpan(ctx, "create_list")
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return task.List{}, err
	}

	err = g.mutate(ctx, func(now time.Time) error {
		id := g.newShortID(func(id string) bool { return g.lists[id] != nil })
		l := in.Build(id, now)
		g.lists[id] = &l
		g.listOrder = append(g.listOrder, id)
		created = l
		return nil
	})
	if err != nil {
		return task.List{}, err
	}

	span.SetAttributes(attribute.String("list_id", created.ID))
	g.bus.PublishListCreated(eventbus.ListCreatedPayload{List: created})
	return created, nil
}

// SetCurrentList makes id the default target for operations that omit a list.
func (g *Graph) SetCurrentList(ctx context.Context, id string) (err error) {
	ctx, span := g.startSpan(ctx, "set_current_list", attribute.String("list_id", id))
	defer func() { endSpan(span, err) }()

	var previous string
	err = g.mutate(ctx, func(time.Time) error {
		if _, ok := g.lists[id]; !ok {
			return notFound("list", id)
		}
		previous = g.currentListID
		g.currentListID = id
		return nil
	})
	if err != nil {
		return err
	}

	g.bus.PublishCurrentListChanged(eventbus.CurrentListChangedPayload{ListID: id, PreviousID: previous})
	return nil
}

// DeleteList removes an empty list. The default list cannot be deleted. When
// the current list is deleted the default list becomes current.
func (g *Graph) DeleteList(ctx context.Context, id string) (err error) {
	ctx, span := g.startSpan(ctx, "delete_list", attribute.String("list_id", id))
	defer func() { endSpan(span, err) }()

	var switched bool
	err = g.mutate(ctx, func(time.Time) error {
		if _, ok := g.lists[id]; !ok {
			return notFound("list", id)
		}
		if id == task.DefaultListID {
			return task.ErrDefaultList
		}
		for _, tid := range g.order {
			if g.tasks[tid].ListID == id {
				return fmt.Errorf("list %q: %w", id, task.ErrListNotEmpty)
			}
		}

		delete(g.lists, id)
		g.listOrder = slices.DeleteFunc(g.listOrder, func(lid string) bool { return lid == id })
		if g.currentListID == id {
			g.currentListID = task.DefaultListID
			switched = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.bus.PublishListDeleted(eventbus.ListDeletedPayload{ListID: id})
	if switched {
		g.bus.PublishCurrentListChanged(eventbus.CurrentListChangedPayload{ListID: task.DefaultListID, PreviousID: id})
	}
	return nil
}

// GetList returns the list with the given id.
func (g *Graph) GetList(id string) (task.List, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	l, ok := g.lists[id]
	if !ok {
		return task.List{}, notFound("list", id)
	}
	return *l, nil
}

// Lists returns every list in creation order.
func (g *Graph) Lists() []task.List {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]task.List, 0, len(g.listOrder))
	for _, id := range g.listOrder {
		out = append(out, *g.lists[id])
	}
	return out
}

// CurrentList returns the current list.
func (g *Graph) CurrentList() task.List {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if l, ok := g.lists[g.currentListID]; ok {
		return *l
	}
	return task.List{ID: g.currentListID}
}
