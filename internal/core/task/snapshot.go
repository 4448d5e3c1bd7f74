package task

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted form of the whole graph. Tasks and lists are
// stored as [id, value] pairs in creation order.
type Snapshot struct {
	Tasks         []Entry[Task] `json:"tasks"`
	Lists         []Entry[List] `json:"lists"`
	CurrentListID string        `json:"current_list_id"`
	ActiveTaskID  string        `json:"active_task_id,omitempty"`
}

// Entry is an [id, value] pair encoded as a two element JSON array.
type Entry[T any] struct {
	ID    string
	Value T
}

// MarshalJSON encodes the entry as ["id", value].
func (e Entry[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Value})
}

// UnmarshalJSON decodes an ["id", value] pair.
func (e *Entry[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("snapshot entry: expected [id, value], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.ID); err != nil {
		return fmt.Errorf("snapshot entry id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Value); err != nil {
		return fmt.Errorf("snapshot entry %q: %w", e.ID, err)
	}
	return nil
}
