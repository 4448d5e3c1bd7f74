package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{name: "valid", in: Input{Title: "write docs"}},
		{name: "blank title", in: Input{Title: "  "}, field: "title"},
		{name: "bad status", in: Input{Title: "x", Status: "done"}, field: "status"},
		{name: "bad priority", in: Input{Title: "x", Priority: "p0"}, field: "priority"},
		{name: "confidence too high", in: Input{Title: "x", Confidence: ptr(1.5)}, field: "confidence"},
		{name: "confidence negative", in: Input{Title: "x", Confidence: ptr(-0.1)}, field: "confidence"},
		{name: "negative duration", in: Input{Title: "x", EstimatedTime: -5}, field: "estimated_time"},
		{name: "blank note", in: Input{Title: "x", Notes: []Note{{Content: " \t"}}}, field: "notes[0].content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)

			var fe criterio.FieldErrors
			require.ErrorAs(t, err, &fe)
			require.NotEmpty(t, fe)
			assert.Equal(t, tt.field, fe[0].Field)
		})
	}
}

func TestInput_Build(t *testing.T) {
	due := t0.Add(24 * time.Hour)
	results := map[string]any{"k": "v"}
	in := Input{
		ListID:       "work",
		Title:        "  ship it  ",
		Description:  " details ",
		Dependencies: []string{"a", "", "a", "b"},
		Tags:         []string{"x", "x"},
		DueDate:      &due,
		Results:      results,
	}

	got := in.Build("id-1", t0)

	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "work", got.ListID)
	assert.Equal(t, "ship it", got.Title)
	assert.Equal(t, "details", got.Description)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, PriorityMedium, got.Priority)
	assert.InDelta(t, DefaultConfidence, got.Confidence, 1e-9)
	assert.Equal(t, []string{"a", "b"}, got.Dependencies)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, t0, got.UpdatedAt)

	// Inputs are copied, not aliased.
	due = due.Add(time.Hour)
	results["k"] = "changed"
	assert.Equal(t, t0.Add(24*time.Hour), *got.DueDate)
	assert.Equal(t, "v", got.Results["k"])
}

func TestInput_BuildTrimsNotes(t *testing.T) {
	notes := []Note{{Content: "  looked at logs \n"}}
	got := Input{Title: "x", Notes: notes}.Build("id", t0)

	require.Len(t, got.Notes, 1)
	assert.Equal(t, "looked at logs", got.Notes[0].Content)
	assert.Equal(t, "  looked at logs \n", notes[0].Content)
}

func TestInput_BuildExplicitConfidenceZero(t *testing.T) {
	got := Input{Title: "x", Confidence: ptr(0.0)}.Build("id", t0)
	assert.Zero(t, got.Confidence)
}

func TestPatch_ValidateAndApply(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())

	err := Patch{Title: ptr(" ")}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	err = Patch{ListID: ptr("")}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	err = Patch{ActualTime: ptr(-1)}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	due := t0
	tk := Task{Title: "old", Priority: PriorityLow, DueDate: &due, Tags: []string{"a"}}
	p := Patch{
		Title:    ptr(" new "),
		Priority: ptr(PriorityUrgent),
		Tags:     ptr([]string{"b", "b"}),
	}
	require.NoError(t, p.Validate())
	assert.False(t, p.IsEmpty())

	p.Apply(&tk)

	assert.Equal(t, "new", tk.Title)
	assert.Equal(t, PriorityUrgent, tk.Priority)
	assert.Equal(t, []string{"b"}, tk.Tags)
	require.NotNil(t, tk.DueDate)

	Patch{ClearDueDate: true}.Apply(&tk)
	assert.Nil(t, tk.DueDate)
}

func TestValidationErrorf(t *testing.T) {
	err := ValidationErrorf("parent_id", "task %q cannot be its own parent", "a")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "cannot be its own parent")
}

func TestListInput_Validate(t *testing.T) {
	require.NoError(t, ListInput{Name: "Work", Color: "#fff"}.Validate())
	require.ErrorIs(t, ListInput{Name: ""}.Validate(), ErrValidation)
	require.ErrorIs(t, ListInput{Name: "Work", Color: "red"}.Validate(), ErrValidation)

	l := ListInput{Name: " Work ", Description: " d "}.Build("l1", t0)
	assert.Equal(t, "Work", l.Name)
	assert.Equal(t, "d", l.Description)
	assert.Equal(t, t0, l.CreatedAt)
}

func TestTask_Clone(t *testing.T) {
	due := t0
	orig := Task{
		ID:       "a",
		Tags:     []string{"x"},
		Subtasks: []string{"c"},
		Notes:    []Note{{ID: "n1", Content: "hi"}},
		Results:  map[string]any{"k": 1},
		DueDate:  &due,
	}

	cp := orig.Clone()
	cp.Tags[0] = "y"
	cp.Subtasks[0] = "d"
	cp.Notes[0].Content = "changed"
	cp.Results["k"] = 2
	*cp.DueDate = t0.Add(time.Hour)

	assert.Equal(t, "x", orig.Tags[0])
	assert.Equal(t, "c", orig.Subtasks[0])
	assert.Equal(t, "hi", orig.Notes[0].Content)
	assert.Equal(t, 1, orig.Results["k"])
	assert.Equal(t, t0, *orig.DueDate)
}

func TestSnapshot_EntryEncoding(t *testing.T) {
	snap := Snapshot{
		Tasks:         []Entry[Task]{{ID: "a", Value: Task{ID: "a", Title: "A", Status: StatusPending, Priority: PriorityLow}}},
		Lists:         []Entry[List]{{ID: DefaultListID, Value: DefaultList(t0)}},
		CurrentListID: DefaultListID,
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tasks":[["a",{`)
	assert.Contains(t, string(data), `"lists":[["default",{`)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "a", got.Tasks[0].ID)
	assert.Equal(t, "A", got.Tasks[0].Value.Title)
	assert.Equal(t, DefaultListID, got.CurrentListID)
}

func TestEntry_UnmarshalRejectsWrongShape(t *testing.T) {
	var e Entry[Task]
	require.Error(t, json.Unmarshal([]byte(`["only-id"]`), &e))
	require.Error(t, json.Unmarshal([]byte(`{"id":"a"}`), &e))
}
