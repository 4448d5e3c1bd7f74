package task

import "time"

// Transition moves t into status `to` and applies the mandatory side effects of
// entering that state. No transition is forbidden. active points at the graph's
// active-task id and is updated in place; it may be nil when the caller does not
// track one.
//
//   - entering in_progress sets StartedAt (when unset or when restarting a
//     finished task) and makes t the active task
//   - entering completed or failed sets CompletedAt and releases the active
//     pointer if it was t
//   - leaving a finished state clears CompletedAt
//   - leaving in_progress for any other state releases the active pointer
//
// UpdatedAt is refreshed on every call. Moving to the current status only
// refreshes UpdatedAt.
func Transition(t *Task, to Status, now time.Time, active *string) {
	from := t.Status
	t.UpdatedAt = now

	if from == to {
		return
	}
	t.Status = to

	switch {
	case to == StatusInProgress:
		if t.StartedAt == nil || t.CompletedAt != nil {
			t.StartedAt = timePtr(now)
		}
		t.CompletedAt = nil
		if active != nil {
			*active = t.ID
		}
	case to.IsTerminal():
		t.CompletedAt = timePtr(now)
		release(active, t.ID)
	default:
		t.CompletedAt = nil
		release(active, t.ID)
	}
}

func release(active *string, id string) {
	if active != nil && *active == id {
		*active = ""
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
