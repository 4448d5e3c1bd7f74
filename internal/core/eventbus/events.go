package eventbus

import (
	"fmt"

	"github.com/colonyops/taskgraph/internal/core/task"
)

// Keep list sorted A-Z
const (
	EventCurrentListChanged Event = "current_list_changed"
	EventListCreated        Event = "list_created"
	EventListDeleted        Event = "list_deleted"
	EventTaskCreated        Event = "task_created"
	EventTaskDeleted        Event = "task_deleted"
	EventTaskUpdated        Event = "task_updated"
	EventTasksDeleted       Event = "tasks_deleted"
	EventTasksImported      Event = "tasks_imported"
	EventTasksUpdated       Event = "tasks_updated"
)

// Events lists every event the graph announces.
var Events = []Event{
	EventCurrentListChanged,
	EventListCreated,
	EventListDeleted,
	EventTaskCreated,
	EventTaskDeleted,
	EventTaskUpdated,
	EventTasksDeleted,
	EventTasksImported,
	EventTasksUpdated,
}

// TaskCreatedPayload is emitted when a task is added to the graph.
type TaskCreatedPayload struct {
	Task task.Task
}

// TaskUpdatedPayload is emitted when a task changes.
type TaskUpdatedPayload struct {
	Task task.Task
}

// TaskDeletedPayload is emitted when a task is deleted. RemovedIDs holds the
// task and all of its descendants.
type TaskDeletedPayload struct {
	TaskID     string
	RemovedIDs []string
}

// TasksUpdatedPayload is emitted once per bulk update.
type TasksUpdatedPayload struct {
	Tasks []task.Task
}

// TasksDeletedPayload is emitted once per bulk delete.
type TasksDeletedPayload struct {
	TaskIDs []string
}

// TasksImportedPayload is emitted once per import.
type TasksImportedPayload struct {
	ListID string
	Tasks  []task.Task
}

// ListCreatedPayload is emitted when a list is created.
type ListCreatedPayload struct {
	List task.List
}

// CurrentListChangedPayload is emitted when the current list changes.
type CurrentListChangedPayload struct {
	ListID     string
	PreviousID string
}

// ListDeletedPayload is emitted when a list is deleted.
type ListDeletedPayload struct {
	ListID string
}

func subscribeTyped[P any](bus *EventBus, event Event, fn func(P)) *Subscription {
	return bus.SubscribeEvent(event, func(e Event, payload any) error {
		p, ok := payload.(P)
		if !ok {
			return fmt.Errorf("event %s: unexpected payload %T", e, payload)
		}
		fn(p)
		return nil
	})
}

func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) {
	bus.Publish(EventTaskCreated, p)
}

func (bus *EventBus) PublishTaskUpdated(p TaskUpdatedPayload) {
	bus.Publish(EventTaskUpdated, p)
}

func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) {
	bus.Publish(EventTaskDeleted, p)
}

func (bus *EventBus) PublishTasksUpdated(p TasksUpdatedPayload) {
	bus.Publish(EventTasksUpdated, p)
}

func (bus *EventBus) PublishTasksDeleted(p TasksDeletedPayload) {
	bus.Publish(EventTasksDeleted, p)
}

func (bus *EventBus) PublishTasksImported(p TasksImportedPayload) {
	bus.Publish(EventTasksImported, p)
}

func (bus *EventBus) PublishListCreated(p ListCreatedPayload) {
	bus.Publish(EventListCreated, p)
}

func (bus *EventBus) PublishCurrentListChanged(p CurrentListChangedPayload) {
	bus.Publish(EventCurrentListChanged, p)
}

func (bus *EventBus) PublishListDeleted(p ListDeletedPayload) {
	bus.Publish(EventListDeleted, p)
}

func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) *Subscription {
	return subscribeTyped(bus, EventTaskCreated, fn)
}

func (bus *EventBus) SubscribeTaskUpdated(fn func(TaskUpdatedPayload)) *Subscription {
	return subscribeTyped(bus, EventTaskUpdated, fn)
}

func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) *Subscription {
	return subscribeTyped(bus, EventTaskDeleted, fn)
}

func (bus *EventBus) SubscribeTasksUpdated(fn func(TasksUpdatedPayload)) *Subscription {
	return subscribeTyped(bus, EventTasksUpdated, fn)
}

func (bus *EventBus) SubscribeTasksDeleted(fn func(TasksDeletedPayload)) *Subscription {
	return subscribeTyped(bus, EventTasksDeleted, fn)
}

func (bus *EventBus) SubscribeTasksImported(fn func(TasksImportedPayload)) *Subscription {
	return subscribeTyped(bus, EventTasksImported, fn)
}

func (bus *EventBus) SubscribeListCreated(fn func(ListCreatedPayload)) *Subscription {
	return subscribeTyped(bus, EventListCreated, fn)
}

func (bus *EventBus) SubscribeCurrentListChanged(fn func(CurrentListChangedPayload)) *Subscription {
	return subscribeTyped(bus, EventCurrentListChanged, fn)
}

func (bus *EventBus) SubscribeListDeleted(fn func(ListDeletedPayload)) *Subscription {
	return subscribeTyped(bus, EventListDeleted, fn)
}
