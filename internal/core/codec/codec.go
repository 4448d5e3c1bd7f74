// Package codec converts tasks to and from the supported exchange formats:
// JSON, YAML, and a markdown checklist.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/taskgraph/internal/core/task"
)

// Format names an exchange format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatYAML}

// ParseFormat resolves a format name. "md" and "yml" are accepted as aliases.
// Unknown names return an error wrapping task.ErrValidation.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", task.ErrValidation, name)
	}
}

// Document is the exported form of a set of tasks.
type Document struct {
	ExportedAt time.Time   `json:"exported_at" yaml:"exported_at"`
	ListID     string      `json:"list_id,omitempty" yaml:"list_id,omitempty"`
	ListName   string      `json:"list_name,omitempty" yaml:"list_name,omitempty"`
	Tasks      []task.Task `json:"tasks" yaml:"tasks"`
}

// Encode serializes doc in the given format.
func Encode(format Format, doc Document) ([]byte, error) {
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	switch format {
	case FormatJSON:
		return encodeJSON(doc)
	case FormatYAML:
		return encodeYAML(doc)
	case FormatMarkdown:
		return encodeMarkdown(doc)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", task.ErrValidation, format)
	}
}

// Decode parses an import payload into task inputs. Linkage (ids, parents,
// subtasks, dependencies, list) is never carried over; callers assign a
// fresh identity and list to every input. Malformed payloads return an error
// wrapping task.ErrFormat.
func Decode(format Format, data []byte) ([]task.Input, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatMarkdown:
		return decodeMarkdown(data), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", task.ErrValidation, format)
	}
}

// record is the subset of a task accepted on import. Confidence is a pointer
// so a missing value falls back to the default instead of zero.
type record struct {
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status        task.Status    `json:"status,omitempty" yaml:"status,omitempty"`
	Priority      task.Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	DueDate       *time.Time     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EstimatedTime int            `json:"estimated_time,omitempty" yaml:"estimated_time,omitempty"`
	ActualTime    int            `json:"actual_time,omitempty" yaml:"actual_time,omitempty"`
	Tags          []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Notes         []task.Note    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Results       map[string]any `json:"results,omitempty" yaml:"results,omitempty"`
}

type importDocument struct {
	Tasks []record `json:"tasks" yaml:"tasks"`
}

func (r record) input() task.Input {
	return task.Input{
		Title:         r.Title,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		Confidence:    r.Confidence,
		DueDate:       r.DueDate,
		EstimatedTime: r.EstimatedTime,
		ActualTime:    r.ActualTime,
		Tags:          r.Tags,
		Notes:         r.Notes,
		Results:       r.Results,
	}
}

// inputs converts records and validates each one. A record that would be
// rejected by task creation makes the whole payload malformed.
func inputs(records []record) ([]task.Input, error) {
	out := make([]task.Input, 0, len(records))
	for i, r := range records {
		in := r.input()
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("%w: tasks[%d]: %v", task.ErrFormat, i, err)
		}
		out = append(out, in)
	}
	return out, nil
}
