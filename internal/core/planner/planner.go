// Package planner turns a goal title into an ordered list of subtask
// templates. The task graph depends only on the Planner interface; Keyword is
// the rule-driven implementation configured from YAML.
package planner

import (
	"github.com/colonyops/taskgraph/internal/core/task"
)

// Template describes one subtask to create when breaking a goal down. A nil
// Confidence leaves the task default in place.
type Template struct {
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Priority    task.Priority `yaml:"priority,omitempty" json:"priority,omitempty"`
	Confidence  *float64      `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// Confidence returns a pointer to v for use in templates.
func Confidence(v float64) *float64 {
	return &v
}

// Planner decides how a goal is decomposed.
type Planner interface {
	// Plan returns the ordered subtask templates for a goal. It may return
	// an empty slice.
	Plan(goalTitle string) []Template
	// IsCritical reports whether the plan needs human approval before any
	// subtask can run.
	IsCritical(goalTitle string) bool
}

// Fallback is the plan used when a planner has nothing to offer for a goal.
func Fallback(goalTitle string) []Template {
	return []Template{
		{
			Title:       "Analyze: " + goalTitle,
			Description: "Clarify the scope, constraints and expected outcome.",
			Priority:    task.PriorityMedium,
			Confidence:  Confidence(0.5),
		},
		{
			Title:       "Execute: " + goalTitle,
			Description: "Carry out the work identified during analysis.",
			Priority:    task.PriorityMedium,
			Confidence:  Confidence(0.5),
		},
		{
			Title:       "Verify: " + goalTitle,
			Description: "Confirm the outcome matches what was expected.",
			Priority:    task.PriorityMedium,
			Confidence:  Confidence(0.5),
		},
	}
}
