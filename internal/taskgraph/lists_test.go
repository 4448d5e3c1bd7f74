package taskgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/eventbus/testbus"
	"github.com/colonyops/taskgraph/internal/core/task"
)

func TestCreateList(t *testing.T) {
	h := newHarness(t)

	l, err := h.graph.CreateList(context.Background(), task.ListInput{Name: " Work ", Color: "#3b82f6"})
	require.NoError(t, err)

	assert.Len(t, l.ID, shortIDLength)
	assert.Equal(t, "Work", l.Name)
	assert.Equal(t, epoch, l.CreatedAt)
	assert.Equal(t, task.DefaultListID, h.graph.CurrentList().ID, "new lists do not become current")

	got, err := h.graph.GetList(l.ID)
	require.NoError(t, err)
	assert.Equal(t, l, got)

	payload := testbus.LastPayload[eventbus.ListCreatedPayload](t, h.bus, eventbus.EventListCreated)
	assert.Equal(t, l.ID, payload.List.ID)
}

func TestCreateList_Validation(t *testing.T) {
	h := newHarness(t)

	_, err := h.graph.CreateList(context.Background(), task.ListInput{Name: "  "})
	require.ErrorIs(t, err, task.ErrValidation)

	_, err = h.graph.CreateList(context.Background(), task.ListInput{Name: "x", Color: "blue"})
	require.ErrorIs(t, err, task.ErrValidation)

	assert.Len(t, h.graph.Lists(), 1)
	h.bus.AssertNotPublished(t, eventbus.EventListCreated)
}

func TestSetCurrentList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	l, err := h.graph.CreateList(ctx, task.ListInput{Name: "Work"})
	require.NoError(t, err)

	require.NoError(t, h.graph.SetCurrentList(ctx, l.ID))
	assert.Equal(t, l.ID, h.graph.CurrentList().ID)

	payload := testbus.LastPayload[eventbus.CurrentListChangedPayload](t, h.bus, eventbus.EventCurrentListChanged)
	assert.Equal(t, l.ID, payload.ListID)
	assert.Equal(t, task.DefaultListID, payload.PreviousID)

	err = h.graph.SetCurrentList(ctx, "nope")
	require.ErrorIs(t, err, task.ErrNotFound)
	assert.Equal(t, l.ID, h.graph.CurrentList().ID)
}

func TestDeleteList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	l, err := h.graph.CreateList(ctx, task.ListInput{Name: "Work"})
	require.NoError(t, err)
	require.NoError(t, h.graph.SetCurrentList(ctx, l.ID))
	h.bus.Reset()

	require.NoError(t, h.graph.DeleteList(ctx, l.ID))

	assert.Len(t, h.graph.Lists(), 1)
	assert.Equal(t, task.DefaultListID, h.graph.CurrentList().ID)
	assert.Equal(t, []eventbus.Event{eventbus.EventListDeleted, eventbus.EventCurrentListChanged}, h.bus.Names())

	_, err = h.graph.GetList(l.ID)
	require.ErrorIs(t, err, task.ErrNotFound)
}

func TestDeleteList_Refusals(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	l, err := h.graph.CreateList(ctx, task.ListInput{Name: "Work"})
	require.NoError(t, err)
	h.create(t, task.Input{Title: "x", ListID: l.ID})

	err = h.graph.DeleteList(ctx, l.ID)
	require.ErrorIs(t, err, task.ErrListNotEmpty)
	require.ErrorIs(t, err, task.ErrValidation)

	err = h.graph.DeleteList(ctx, task.DefaultListID)
	require.ErrorIs(t, err, task.ErrDefaultList)

	err = h.graph.DeleteList(ctx, "nope")
	require.ErrorIs(t, err, task.ErrNotFound)

	assert.Len(t, h.graph.Lists(), 2)
	h.bus.AssertNotPublished(t, eventbus.EventListDeleted)
}

func TestMoveTaskBetweenLists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	l, err := h.graph.CreateList(ctx, task.ListInput{Name: "Work"})
	require.NoError(t, err)
	created := h.create(t, task.Input{Title: "x"})

	moved, err := h.graph.UpdateTask(ctx, created.ID, task.Patch{ListID: &l.ID})
	require.NoError(t, err)
	assert.Equal(t, l.ID, moved.ListID)
	assert.Len(t, h.graph.GetAllTasks(l.ID), 1)
	assert.Empty(t, h.graph.GetAllTasks(task.DefaultListID))
}
