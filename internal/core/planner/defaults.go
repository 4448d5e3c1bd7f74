package planner

import "github.com/colonyops/taskgraph/internal/core/task"

// DefaultCriticalPatterns returns the patterns that put an approval gate in
// front of a plan.
func DefaultCriticalPatterns() []string {
	return []string{
		`\bfix`,
		`\bdeploy`,
		`\bdelete`,
		`\bmigrat`,
		`\brelease`,
	}
}

// DefaultRules returns the built-in decomposition rules in match order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "fix",
			Pattern: `\b(fix|bug|broken|crash)`,
			Steps: []Template{
				{Title: "Reproduce: {{ .Goal }}", Description: "Write down exact steps that trigger the problem.", Priority: task.PriorityHigh, Confidence: Confidence(0.9)},
				{Title: "Find the root cause", Description: "Trace the failure to the code or data responsible.", Priority: task.PriorityHigh, Confidence: Confidence(0.7)},
				{Title: "Implement the fix", Priority: task.PriorityHigh, Confidence: Confidence(0.8)},
				{Title: "Add a regression test", Description: "Cover the reproduction steps with an automated test.", Priority: task.PriorityMedium, Confidence: Confidence(0.9)},
				{Title: "Verify the fix", Description: "Confirm {{ .Goal }} no longer reproduces.", Priority: task.PriorityMedium, Confidence: Confidence(0.9)},
			},
		},
		{
			Name:    "release",
			Pattern: `\b(deploy|release|ship)`,
			Steps: []Template{
				{Title: "Prepare release notes", Priority: task.PriorityMedium, Confidence: Confidence(0.9)},
				{Title: "Run the full test suite", Priority: task.PriorityHigh, Confidence: Confidence(0.9)},
				{Title: "Roll out to staging", Priority: task.PriorityHigh, Confidence: Confidence(0.8)},
				{Title: "Roll out to production", Description: "{{ .Goal }}", Priority: task.PriorityHigh, Confidence: Confidence(0.7)},
			},
		},
		{
			Name:    "migrate",
			Pattern: `\bmigrat`,
			Steps: []Template{
				{Title: "Back up affected data", Priority: task.PriorityUrgent, Confidence: Confidence(0.9)},
				{Title: "Write the migration", Description: "{{ .Goal }}", Priority: task.PriorityHigh, Confidence: Confidence(0.7)},
				{Title: "Dry run against a copy", Priority: task.PriorityHigh, Confidence: Confidence(0.8)},
				{Title: "Run the migration", Priority: task.PriorityHigh, Confidence: Confidence(0.7)},
				{Title: "Verify migrated data", Priority: task.PriorityMedium, Confidence: Confidence(0.8)},
			},
		},
		{
			Name:    "research",
			Pattern: `\b(research|investigate|evaluate|explore)`,
			Steps: []Template{
				{Title: "Gather sources for {{ .Goal }}", Priority: task.PriorityMedium, Confidence: Confidence(0.8)},
				{Title: "Compare options", Priority: task.PriorityMedium, Confidence: Confidence(0.6)},
				{Title: "Write up findings", Priority: task.PriorityLow, Confidence: Confidence(0.8)},
			},
		},
		{
			Name:    "document",
			Pattern: `\b(write|document|docs)`,
			Steps: []Template{
				{Title: "Outline: {{ .Goal }}", Priority: task.PriorityMedium, Confidence: Confidence(0.9)},
				{Title: "Draft", Priority: task.PriorityMedium, Confidence: Confidence(0.8)},
				{Title: "Review and revise", Priority: task.PriorityLow, Confidence: Confidence(0.8)},
				{Title: "Publish", Priority: task.PriorityLow, Confidence: Confidence(0.9)},
			},
		},
		{
			Name:    "build",
			Pattern: `\b(build|implement|add|create)`,
			Steps: []Template{
				{Title: "Design: {{ .Goal }}", Priority: task.PriorityHigh, Confidence: Confidence(0.7)},
				{Title: "Implement", Priority: task.PriorityHigh, Confidence: Confidence(0.7)},
				{Title: "Write tests", Priority: task.PriorityMedium, Confidence: Confidence(0.8)},
				{Title: "Review", Priority: task.PriorityMedium, Confidence: Confidence(0.9)},
			},
		},
	}
}
