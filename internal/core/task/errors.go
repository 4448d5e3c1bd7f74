package task

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a task or list id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when input fails validation (blank title,
	// empty note, unsupported format, ...).
	ErrValidation = errors.New("validation failed")
	// ErrFormat is returned when an import payload cannot be parsed.
	ErrFormat = errors.New("malformed payload")

	// ErrListNotEmpty is returned when deleting a list that still holds tasks.
	ErrListNotEmpty = fmt.Errorf("%w: list still holds tasks", ErrValidation)
	// ErrDefaultList is returned when deleting the seeded default list.
	ErrDefaultList = fmt.Errorf("%w: the default list cannot be deleted", ErrValidation)
)
