package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/task"
)

func TestBatchInput_Validate(t *testing.T) {
	item := func(ref, title string) BatchTask {
		return BatchTask{Ref: ref, Input: task.Input{Title: title}}
	}

	tests := []struct {
		name    string
		input   BatchInput
		wantErr string
	}{
		{
			name:    "empty tasks",
			input:   BatchInput{Tasks: []BatchTask{}},
			wantErr: "tasks",
		},
		{
			name:    "missing title",
			input:   BatchInput{Tasks: []BatchTask{item("a", "  ")}},
			wantErr: "tasks[0]",
		},
		{
			name:    "duplicate refs",
			input:   BatchInput{Tasks: []BatchTask{item("a", "one"), item("a", "two")}},
			wantErr: "duplicate ref",
		},
		{
			name: "parent ref used before definition",
			input: BatchInput{Tasks: []BatchTask{
				{Input: task.Input{Title: "child"}, ParentRef: "p"},
				item("p", "parent"),
			}},
			wantErr: "unknown ref",
		},
		{
			name: "dependency on unknown ref",
			input: BatchInput{Tasks: []BatchTask{
				{Input: task.Input{Title: "x"}, DependsOnRefs: []string{"nope"}},
			}},
			wantErr: "depends_on_refs",
		},
		{
			name: "parent ref and parent id",
			input: BatchInput{Tasks: []BatchTask{
				item("p", "parent"),
				{Input: task.Input{Title: "child", ParentID: "abc"}, ParentRef: "p"},
			}},
			wantErr: "parent_id",
		},
		{
			name: "valid input",
			input: BatchInput{Tasks: []BatchTask{
				item("design", "Design"),
				{Input: task.Input{Title: "Build"}, ParentRef: "design", DependsOnRefs: []string{"design"}},
			}},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBatchInput_UnmarshalsEmbeddedInput(t *testing.T) {
	raw := `{"tasks":[{"ref":"a","title":"Design","priority":"high","tags":["x"]},{"title":"Build","depends_on_refs":["a"]}]}`

	var in BatchInput
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	require.Len(t, in.Tasks, 2)
	assert.Equal(t, "a", in.Tasks[0].Ref)
	assert.Equal(t, "Design", in.Tasks[0].Title)
	assert.Equal(t, task.PriorityHigh, in.Tasks[0].Priority)
	assert.Equal(t, []string{"a"}, in.Tasks[1].DependsOnRefs)
}

func writeBatch(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestBatch_CreatesLinkedTasks(t *testing.T) {
	h := newCLIHarness(t)

	path := writeBatch(t, BatchInput{Tasks: []BatchTask{
		{Ref: "goal", Input: task.Input{Title: "Ship feature"}},
		{Ref: "design", Input: task.Input{Title: "Design"}, ParentRef: "goal"},
		{Input: task.Input{Title: "Build"}, ParentRef: "goal", DependsOnRefs: []string{"design"}},
	}})

	out := decode[BatchOutput](t, h.mustRun(t, "batch", "-f", path))
	assert.Len(t, out.BatchID, 6)
	require.Len(t, out.Results, 3)
	for _, r := range out.Results {
		assert.Equal(t, StatusCreated, r.Status, r.Error)
	}

	goalID, designID, buildID := out.Results[0].TaskID, out.Results[1].TaskID, out.Results[2].TaskID

	goal, err := h.app.Graph.GetTask(goalID)
	require.NoError(t, err)
	assert.Equal(t, []string{designID, buildID}, goal.Subtasks)

	build, err := h.app.Graph.GetTask(buildID)
	require.NoError(t, err)
	assert.Equal(t, goalID, build.ParentID)
	assert.Equal(t, []string{designID}, build.Dependencies)
}

func TestBatch_FailureThresholdSkipsRest(t *testing.T) {
	h := newCLIHarness(t)

	bad := func(ref string) BatchTask {
		return BatchTask{Ref: ref, Input: task.Input{Title: "x", ListID: "missing"}}
	}
	path := writeBatch(t, BatchInput{Tasks: []BatchTask{
		bad("a"),
		{Input: task.Input{Title: "needs a"}, DependsOnRefs: []string{"a"}},
		bad("c"),
		{Input: task.Input{Title: "never tried"}},
	}})

	out := decode[BatchOutput](t, h.mustRun(t, "batch", "-f", path))
	require.Len(t, out.Results, 4)
	assert.Equal(t, StatusFailed, out.Results[0].Status)
	assert.Equal(t, StatusFailed, out.Results[1].Status)
	assert.Contains(t, out.Results[1].Error, "was not created")
	assert.Equal(t, StatusFailed, out.Results[2].Status)
	assert.Equal(t, StatusSkipped, out.Results[3].Status)

	assert.Empty(t, h.app.Graph.GetAllTasks(""))
}

func TestBatch_InvalidInput(t *testing.T) {
	h := newCLIHarness(t)

	path := writeBatch(t, BatchInput{Tasks: []BatchTask{}})
	_, err := h.run(t, "batch", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
