// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Required validates a value is non-empty after trimming whitespace.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

// Confidence validates a confidence score lies in [0, 1].
func Confidence(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("must be between 0 and 1, got %g", v)
	}
	return nil
}

// Color validates a CSS hex color such as "#fff" or "#3b82f6".
func Color(value string) error {
	if !hexColor.MatchString(value) {
		return fmt.Errorf("invalid color %q: expected #rgb or #rrggbb", value)
	}
	return nil
}
