package task

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskgraph/internal/core/validate"
)

// DefaultConfidence is assigned when a task is created without one.
const DefaultConfidence = 1.0

// Input carries the caller-supplied fields for creating a task. Zero values
// fall back to the defaults of the data model.
type Input struct {
	ListID        string         `json:"list_id,omitempty" yaml:"list_id,omitempty"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status        Status         `json:"status,omitempty" yaml:"status,omitempty"`
	Priority      Priority       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Dependencies  []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ParentID      string         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	DueDate       *time.Time     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EstimatedTime int            `json:"estimated_time,omitempty" yaml:"estimated_time,omitempty"`
	ActualTime    int            `json:"actual_time,omitempty" yaml:"actual_time,omitempty"`
	Tags          []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Notes         []Note         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Results       map[string]any `json:"results,omitempty" yaml:"results,omitempty"`
}

// Validate checks field-level constraints. The returned error wraps both
// ErrValidation and criterio.FieldErrors.
func (in Input) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.Required(in.Title); err != nil {
		errs = errs.Append("title", err)
	}
	if in.Status != "" && !in.Status.IsValid() {
		errs = errs.Append("status", fmt.Errorf("unknown status %q", in.Status))
	}
	if in.Priority != "" && !in.Priority.IsValid() {
		errs = errs.Append("priority", fmt.Errorf("unknown priority %q", in.Priority))
	}
	if in.Confidence != nil {
		if err := validate.Confidence(*in.Confidence); err != nil {
			errs = errs.Append("confidence", err)
		}
	}
	if in.EstimatedTime < 0 || in.ActualTime < 0 {
		errs = errs.Append("estimated_time", fmt.Errorf("durations cannot be negative"))
	}
	for i, n := range in.Notes {
		if err := validate.Required(n.Content); err != nil {
			errs = errs.Append(fmt.Sprintf("notes[%d].content", i), err)
		}
	}

	return wrapValidation(errs.ToError())
}

// Build returns a new pending task populated from the input. Status is left
// for the caller to route through Transition.
func (in Input) Build(id string, now time.Time) Task {
	t := Task{
		ID:            id,
		ListID:        in.ListID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Status:        StatusPending,
		Priority:      in.Priority,
		Confidence:    DefaultConfidence,
		Dependencies:  dedupe(in.Dependencies),
		ParentID:      in.ParentID,
		CreatedAt:     now,
		UpdatedAt:     now,
		DueDate:       cloneTime(in.DueDate),
		EstimatedTime: in.EstimatedTime,
		ActualTime:    in.ActualTime,
		Tags:          dedupe(in.Tags),
		Notes:         slices.Clone(in.Notes),
		Results:       maps.Clone(in.Results),
	}

	for i := range t.Notes {
		t.Notes[i].Content = strings.TrimSpace(t.Notes[i].Content)
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if in.Confidence != nil {
		t.Confidence = *in.Confidence
	}

	return t
}

// Patch is a shallow update. Nil fields are left untouched.
type Patch struct {
	Title         *string         `json:"title,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Status        *Status         `json:"status,omitempty"`
	Priority      *Priority       `json:"priority,omitempty"`
	Confidence    *float64        `json:"confidence,omitempty"`
	Dependencies  *[]string       `json:"dependencies,omitempty"`
	ParentID      *string         `json:"parent_id,omitempty"`
	ListID        *string         `json:"list_id,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	ClearDueDate  bool            `json:"clear_due_date,omitempty"`
	EstimatedTime *int            `json:"estimated_time,omitempty"`
	ActualTime    *int            `json:"actual_time,omitempty"`
	Tags          *[]string       `json:"tags,omitempty"`
	Results       *map[string]any `json:"results,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Validate checks field-level constraints on the set fields.
func (p Patch) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if p.Title != nil {
		if err := validate.Required(*p.Title); err != nil {
			errs = errs.Append("title", err)
		}
	}
	if p.Status != nil && !p.Status.IsValid() {
		errs = errs.Append("status", fmt.Errorf("unknown status %q", *p.Status))
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		errs = errs.Append("priority", fmt.Errorf("unknown priority %q", *p.Priority))
	}
	if p.Confidence != nil {
		if err := validate.Confidence(*p.Confidence); err != nil {
			errs = errs.Append("confidence", err)
		}
	}
	if p.ListID != nil {
		if err := validate.Required(*p.ListID); err != nil {
			errs = errs.Append("list_id", err)
		}
	}
	if (p.EstimatedTime != nil && *p.EstimatedTime < 0) || (p.ActualTime != nil && *p.ActualTime < 0) {
		errs = errs.Append("estimated_time", fmt.Errorf("durations cannot be negative"))
	}

	return wrapValidation(errs.ToError())
}

// Apply overwrites the plain fields of t. Status, ParentID, and ListID touch
// graph invariants and are applied by the graph itself.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Confidence != nil {
		t.Confidence = *p.Confidence
	}
	if p.Dependencies != nil {
		t.Dependencies = dedupe(*p.Dependencies)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = cloneTime(p.DueDate)
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.ActualTime != nil {
		t.ActualTime = *p.ActualTime
	}
	if p.Tags != nil {
		t.Tags = dedupe(*p.Tags)
	}
	if p.Results != nil {
		t.Results = *p.Results
	}
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// ValidationErrorf builds an error wrapping ErrValidation for checks that
// need graph context (cycles, self dependencies, ...).
func ValidationErrorf(field, format string, args ...any) error {
	return wrapValidation(criterio.NewFieldErrors(field, fmt.Errorf(format, args...)))
}
