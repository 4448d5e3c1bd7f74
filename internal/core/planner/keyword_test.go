package planner

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/task"
)

func TestDefault_Compiles(t *testing.T) {
	assert.NotPanics(t, func() { Default() })
}

func TestKeyword_Plan(t *testing.T) {
	p := Default()

	tests := []struct {
		goal      string
		wantRule  string
		wantSteps int
	}{
		{goal: "Fix login timeout", wantRule: "fix", wantSteps: 5},
		{goal: "the importer is BROKEN", wantRule: "fix", wantSteps: 5},
		{goal: "Deploy v2 to prod", wantRule: "release", wantSteps: 4},
		{goal: "Migrate users table", wantRule: "migrate", wantSteps: 5},
		{goal: "Investigate slow queries", wantRule: "research", wantSteps: 3},
		{goal: "Write onboarding docs", wantRule: "document", wantSteps: 4},
		{goal: "Implement dark mode", wantRule: "build", wantSteps: 4},
	}

	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			rule, ok := p.RuleFor(tt.goal)
			require.True(t, ok)
			assert.Equal(t, tt.wantRule, rule)
			assert.Len(t, p.Plan(tt.goal), tt.wantSteps)
		})
	}
}

func TestKeyword_PlanRendersGoal(t *testing.T) {
	steps := Default().Plan("Fix login timeout")
	require.NotEmpty(t, steps)

	assert.Equal(t, "Reproduce: Fix login timeout", steps[0].Title)
	assert.Equal(t, task.PriorityHigh, steps[0].Priority)
	require.NotNil(t, steps[0].Confidence)
	assert.InDelta(t, 0.9, *steps[0].Confidence, 1e-9)
	assert.Equal(t, "Confirm Fix login timeout no longer reproduces.", steps[4].Description)
	assert.Empty(t, steps[2].Description)
}

func TestKeyword_StepConfidence(t *testing.T) {
	k, err := NewKeyword([]Rule{{
		Name:    "spike",
		Pattern: "spike",
		Steps:   []Template{{Title: "guess", Confidence: Confidence(0)}, {Title: "unrated"}},
	}}, nil)
	require.NoError(t, err)

	steps := k.Plan("spike auth")
	require.Len(t, steps, 2)
	require.NotNil(t, steps[0].Confidence)
	assert.Zero(t, *steps[0].Confidence)
	assert.Nil(t, steps[1].Confidence)

	_, err = NewKeyword([]Rule{{Name: "bad", Pattern: "x", Steps: []Template{{Title: "x", Confidence: Confidence(1.5)}}}}, nil)
	require.Error(t, err)
}

func TestKeyword_PlanNoMatch(t *testing.T) {
	p := Default()
	assert.Empty(t, p.Plan("Water the plants"))

	_, ok := p.RuleFor("Water the plants")
	assert.False(t, ok)
}

func TestKeyword_FirstMatchWins(t *testing.T) {
	p, err := NewKeyword([]Rule{
		{Name: "a", Pattern: "alpha", Steps: []Template{{Title: "from a"}}},
		{Name: "b", Pattern: "alpha|beta", Steps: []Template{{Title: "from b"}}},
	}, nil)
	require.NoError(t, err)

	steps := p.Plan("alpha beta")
	require.Len(t, steps, 1)
	assert.Equal(t, "from a", steps[0].Title)
}

func TestKeyword_IsCritical(t *testing.T) {
	p := Default()

	tests := []struct {
		goal string
		want bool
	}{
		{"Fix login timeout", true},
		{"deploy the api", true},
		{"Delete stale branches", true},
		{"Migration of billing", true},
		{"Release 1.4", true},
		{"Plan the offsite", false},
		{"prefix handling", false},
	}

	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsCritical(tt.goal))
		})
	}
}

func TestNewKeyword_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rules    []Rule
		critical []string
		field    string
	}{
		{
			name:  "bad regex",
			rules: []Rule{{Name: "x", Pattern: "(", Steps: []Template{{Title: "t"}}}},
			field: "rules[0]",
		},
		{
			name:  "no steps",
			rules: []Rule{{Name: "x", Pattern: "x"}},
			field: "rules[0]",
		},
		{
			name:  "unknown template field",
			rules: []Rule{{Name: "x", Pattern: "x", Steps: []Template{{Title: "{{ .Nope }}"}}}},
			field: "rules[0]",
		},
		{
			name:  "bad priority",
			rules: []Rule{{Name: "x", Pattern: "x", Steps: []Template{{Title: "t", Priority: "meh"}}}},
			field: "rules[0]",
		},
		{
			name:     "bad critical pattern",
			critical: []string{"ok", "[unclosed"},
			field:    "critical_patterns[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKeyword(tt.rules, tt.critical)
			require.Error(t, err)

			var fe criterio.FieldErrors
			require.ErrorAs(t, err, &fe)
			require.NotEmpty(t, fe)
			assert.Equal(t, tt.field, fe[0].Field)
		})
	}
}

func TestFallback(t *testing.T) {
	steps := Fallback("Plan the offsite")
	require.Len(t, steps, 3)
	assert.Equal(t, "Analyze: Plan the offsite", steps[0].Title)
	assert.Equal(t, "Execute: Plan the offsite", steps[1].Title)
	assert.Equal(t, "Verify: Plan the offsite", steps[2].Title)
}
