package commands

import (
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskgraph/internal/core/task"
)

// ErrorData describes err for the JSON error written to stderr: its kind and,
// for validation failures, the message per field.
func ErrorData(err error) map[string]any {
	data := map[string]any{"kind": errorKind(err)}

	var fe criterio.FieldErrors
	if errors.As(err, &fe) {
		fields := make(map[string]string, len(fe))
		for _, e := range fe {
			fields[e.Field] = e.Err.Error()
		}
		data["fields"] = fields
	}

	return data
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return "not_found"
	case errors.Is(err, task.ErrFormat):
		return "format"
	case errors.Is(err, task.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
