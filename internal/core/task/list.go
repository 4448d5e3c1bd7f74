package task

import (
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskgraph/internal/core/validate"
)

// DefaultListID is the id of the list seeded on first initialization.
const DefaultListID = "default"

// List is a named partition of the task space.
type List struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string    `json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// ListInput carries the caller-supplied fields for creating a list.
type ListInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Validate checks that the list has a name and a well-formed color.
func (in ListInput) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.Required(in.Name); err != nil {
		errs = errs.Append("name", err)
	}
	if in.Color != "" {
		if err := validate.Color(in.Color); err != nil {
			errs = errs.Append("color", err)
		}
	}

	return wrapValidation(errs.ToError())
}

// Build returns a new list from the input.
func (in ListInput) Build(id string, now time.Time) List {
	return List{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DefaultList returns the seeded list.
func DefaultList(now time.Time) List {
	return List{
		ID:        DefaultListID,
		Name:      "Default",
		Color:     "#6b7280",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
