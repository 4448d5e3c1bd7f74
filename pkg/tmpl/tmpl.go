// Package tmpl provides text template rendering for plan steps and
// checklist exports.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// checkbox renders a markdown checkbox marker.
func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// oneLine collapses all whitespace runs, including newlines, to single spaces
// so a value can sit on a single markdown line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func stringOrDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

var funcs = template.FuncMap{
	"join":     strings.Join,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
	"trim":     strings.TrimSpace,
	"oneline":  oneLine,
	"checkbox": checkbox,
	"date":     date,
	"default":  func(def, s string) string { return stringOrDefault(s, def) },
}

// Parse compiles a named template with the package functions. Referencing an
// undefined map key is an execution error.
func Parse(name, tmpl string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return t, nil
}

// Execute runs a compiled template against data and returns the output.
func Execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - join: Join string slice with separator (e.g., join .Tags ", ")
//   - lower, upper, trim: string helpers from the strings package
//   - oneline: Collapse whitespace and newlines to single spaces
//   - checkbox: Render "[x]" for true and "[ ]" for false
//   - date: Format a *time.Time as YYYY-MM-DD (empty when nil)
//   - default: Fallback for empty strings (e.g., default "n/a" .Name)
func Render(tmpl string, data any) (string, error) {
	t, err := Parse("", tmpl)
	if err != nil {
		return "", err
	}
	return Execute(t, data)
}
