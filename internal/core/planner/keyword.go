package planner

import (
	"fmt"
	"regexp"
	"text/template"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/pkg/tmpl"
)

// Rule maps goals whose title matches Pattern to an ordered list of steps.
// Step titles and descriptions are templates rendered with {{ .Goal }}.
type Rule struct {
	Name    string     `yaml:"name"`
	Pattern string     `yaml:"pattern"`
	Steps   []Template `yaml:"steps"`
}

// Validate checks that the rule compiles.
func (r Rule) Validate() error {
	_, err := compileRule(r)
	return err
}

type stepData struct {
	Goal string
}

type compiledStep struct {
	rawTitle    string
	rawDesc     string
	title       *template.Template
	description *template.Template
	priority    task.Priority
	confidence  *float64
}

type compiledRule struct {
	name  string
	re    *regexp.Regexp
	steps []compiledStep
}

// Keyword is a Planner driven by ordered regular expression rules. The first
// rule whose pattern matches the goal title wins. Patterns match
// case-insensitively.
type Keyword struct {
	rules    []compiledRule
	critical []*regexp.Regexp
}

var _ Planner = (*Keyword)(nil)

// NewKeyword compiles rules and critical patterns. Every problem is reported
// as a criterio field error keyed by its position.
func NewKeyword(rules []Rule, criticalPatterns []string) (*Keyword, error) {
	var errs criterio.FieldErrorsBuilder
	k := &Keyword{}

	for i, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			errs = errs.Append(fmt.Sprintf("rules[%d]", i), err)
			continue
		}
		k.rules = append(k.rules, cr)
	}

	for i, p := range criticalPatterns {
		re, err := compilePattern(p)
		if err != nil {
			errs = errs.Append(fmt.Sprintf("critical_patterns[%d]", i), err)
			continue
		}
		k.critical = append(k.critical, re)
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return k, nil
}

// Default returns a Keyword planner with the built-in rules.
func Default() *Keyword {
	k, err := NewKeyword(DefaultRules(), DefaultCriticalPatterns())
	if err != nil {
		panic(fmt.Sprintf("planner: default rules do not compile: %v", err))
	}
	return k
}

// Plan renders the steps of the first matching rule. Nil means no rule matched.
func (k *Keyword) Plan(goalTitle string) []Template {
	for _, r := range k.rules {
		if !r.re.MatchString(goalTitle) {
			continue
		}

		data := stepData{Goal: goalTitle}
		out := make([]Template, 0, len(r.steps))
		for _, s := range r.steps {
			out = append(out, Template{
				Title:       render(s.title, s.rawTitle, data),
				Description: render(s.description, s.rawDesc, data),
				Priority:    s.priority,
				Confidence:  cloneConfidence(s.confidence),
			})
		}
		return out
	}
	return nil
}

// IsCritical reports whether any critical pattern matches the goal title.
func (k *Keyword) IsCritical(goalTitle string) bool {
	for _, re := range k.critical {
		if re.MatchString(goalTitle) {
			return true
		}
	}
	return false
}

// RuleFor returns the name of the rule that would plan the goal.
func (k *Keyword) RuleFor(goalTitle string) (string, bool) {
	for _, r := range k.rules {
		if r.re.MatchString(goalTitle) {
			return r.name, true
		}
	}
	return "", false
}

func compilePattern(p string) (*regexp.Regexp, error) {
	if p == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	re, err := regexp.Compile("(?i)" + p)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
	}
	return re, nil
}

func compileRule(r Rule) (compiledRule, error) {
	re, err := compilePattern(r.Pattern)
	if err != nil {
		return compiledRule{}, err
	}
	if len(r.Steps) == 0 {
		return compiledRule{}, fmt.Errorf("rule %q has no steps", r.Name)
	}

	cr := compiledRule{name: r.Name, re: re}
	for i, s := range r.Steps {
		if s.Title == "" {
			return compiledRule{}, fmt.Errorf("step %d: title is required", i)
		}
		if s.Priority != "" && !s.Priority.IsValid() {
			return compiledRule{}, fmt.Errorf("step %d: unknown priority %q", i, s.Priority)
		}
		if s.Confidence != nil && (*s.Confidence < 0 || *s.Confidence > 1) {
			return compiledRule{}, fmt.Errorf("step %d: confidence must be between 0 and 1", i)
		}

		title, err := tmpl.Parse(fmt.Sprintf("%s.step%d.title", r.Name, i), s.Title)
		if err != nil {
			return compiledRule{}, fmt.Errorf("step %d title: %w", i, err)
		}
		// Catch references to fields other than .Goal up front.
		probe := stepData{Goal: "probe"}
		if _, err := tmpl.Execute(title, probe); err != nil {
			return compiledRule{}, fmt.Errorf("step %d title: %w", i, err)
		}

		var desc *template.Template
		if s.Description != "" {
			desc, err = tmpl.Parse(fmt.Sprintf("%s.step%d.description", r.Name, i), s.Description)
			if err != nil {
				return compiledRule{}, fmt.Errorf("step %d description: %w", i, err)
			}
			if _, err := tmpl.Execute(desc, probe); err != nil {
				return compiledRule{}, fmt.Errorf("step %d description: %w", i, err)
			}
		}

		cr.steps = append(cr.steps, compiledStep{
			rawTitle:    s.Title,
			rawDesc:     s.Description,
			title:       title,
			description: desc,
			priority:    s.Priority,
			confidence:  cloneConfidence(s.Confidence),
		})
	}
	return cr, nil
}

func cloneConfidence(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Confidence(*v)
}

func render(t *template.Template, raw string, data stepData) string {
	if t == nil {
		return raw
	}
	out, err := tmpl.Execute(t, data)
	if err != nil {
		return raw
	}
	return out
}
