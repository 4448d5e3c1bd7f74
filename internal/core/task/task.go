// Package task defines the task graph domain model: tasks, lists, notes, the
// status state machine, and the next-task selection algorithm.
package task

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Status represents the lifecycle state of a task.
// ENUM(pending, in_progress, completed, failed, awaiting_approval).
type Status string

const (
	StatusPending          Status = "pending"
	StatusInProgress       Status = "in_progress"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusAwaitingApproval Status = "awaiting_approval"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusAwaitingApproval,
	StatusCompleted,
	StatusFailed,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return slices.Contains(Statuses, s)
}

// IsTerminal reports whether s finishes a task (completed or failed).
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus parses a status name. Dashes and spaces are accepted in place of
// underscores ("in-progress", "In Progress").
func ParseStatus(name string) (Status, error) {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(name)))
	s := Status(normalized)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, name)
	}
	return s, nil
}

// Label returns a human readable label, e.g. "In Progress".
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusAwaitingApproval:
		return "Awaiting Approval"
	default:
		return string(s)
	}
}

// Priority ranks tasks for scheduling.
// ENUM(low, medium, high, urgent).
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p.Weight() > 0
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(name string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, name)
	}
	return p, nil
}

// Weight orders priorities for the scheduler. Unknown priorities weigh 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// NoteType classifies who authored a note.
type NoteType string

const (
	NoteTypeUser   NoteType = "user"
	NoteTypeSystem NoteType = "system"
	NoteTypeAI     NoteType = "ai"
)

// IsValid reports whether t is a known note type.
func (t NoteType) IsValid() bool {
	switch t {
	case NoteTypeUser, NoteTypeSystem, NoteTypeAI:
		return true
	default:
		return false
	}
}

// Note is a single append-only annotation on a task.
type Note struct {
	ID        string    `json:"id" yaml:"id"`
	Content   string    `json:"content" yaml:"content"`
	Type      NoteType  `json:"type" yaml:"type"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Task is a unit of work in the graph.
type Task struct {
	ID            string         `json:"id" yaml:"id"`
	ListID        string         `json:"list_id" yaml:"list_id"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status        Status         `json:"status" yaml:"status"`
	Priority      Priority       `json:"priority" yaml:"priority"`
	Confidence    float64        `json:"confidence" yaml:"confidence"`
	Dependencies  []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ParentID      string         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Subtasks      []string       `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" yaml:"updated_at"`
	StartedAt     *time.Time     `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	DueDate       *time.Time     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EstimatedTime int            `json:"estimated_time,omitempty" yaml:"estimated_time,omitempty"` // minutes
	ActualTime    int            `json:"actual_time,omitempty" yaml:"actual_time,omitempty"`       // minutes
	Tags          []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Notes         []Note         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Results       map[string]any `json:"results,omitempty" yaml:"results,omitempty"`
}

// IsOverdue reports whether the task has a due date before now and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// HasSubtask reports whether id is one of the task's direct children.
func (t *Task) HasSubtask(id string) bool {
	return slices.Contains(t.Subtasks, id)
}

// Clone returns a deep copy so callers can't mutate graph state through shared
// slices, maps, or time pointers.
func (t Task) Clone() Task {
	t.Dependencies = slices.Clone(t.Dependencies)
	t.Subtasks = slices.Clone(t.Subtasks)
	t.Tags = slices.Clone(t.Tags)
	t.Notes = slices.Clone(t.Notes)
	t.Results = maps.Clone(t.Results)
	t.StartedAt = cloneTime(t.StartedAt)
	t.CompletedAt = cloneTime(t.CompletedAt)
	t.DueDate = cloneTime(t.DueDate)
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// dedupe removes empty and repeated entries while keeping first-seen order.
func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
