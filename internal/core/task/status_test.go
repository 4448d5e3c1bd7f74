package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestTransition_ToInProgress(t *testing.T) {
	tk := Task{ID: "a", Status: StatusPending}
	active := ""

	Transition(&tk, StatusInProgress, t0, &active)

	assert.Equal(t, StatusInProgress, tk.Status)
	require.NotNil(t, tk.StartedAt)
	assert.Equal(t, t0, *tk.StartedAt)
	assert.Nil(t, tk.CompletedAt)
	assert.Equal(t, t0, tk.UpdatedAt)
	assert.Equal(t, "a", active)
}

func TestTransition_KeepsOriginalStart(t *testing.T) {
	started := t0
	tk := Task{ID: "a", Status: StatusPending, StartedAt: &started}

	Transition(&tk, StatusInProgress, t0.Add(time.Hour), nil)

	require.NotNil(t, tk.StartedAt)
	assert.Equal(t, t0, *tk.StartedAt)
}

func TestTransition_RestartFinishedTask(t *testing.T) {
	started, done := t0, t0.Add(time.Hour)
	tk := Task{ID: "a", Status: StatusFailed, StartedAt: &started, CompletedAt: &done}
	later := t0.Add(2 * time.Hour)

	Transition(&tk, StatusInProgress, later, nil)

	require.NotNil(t, tk.StartedAt)
	assert.Equal(t, later, *tk.StartedAt)
	assert.Nil(t, tk.CompletedAt)
}

func TestTransition_ToTerminal(t *testing.T) {
	for _, to := range []Status{StatusCompleted, StatusFailed} {
		t.Run(string(to), func(t *testing.T) {
			tk := Task{ID: "a", Status: StatusInProgress}
			active := "a"

			Transition(&tk, to, t0, &active)

			assert.Equal(t, to, tk.Status)
			require.NotNil(t, tk.CompletedAt)
			assert.Equal(t, t0, *tk.CompletedAt)
			assert.Empty(t, active)
		})
	}
}

func TestTransition_ReleasesOnlyOwnActivePointer(t *testing.T) {
	tk := Task{ID: "a", Status: StatusInProgress}
	active := "b"

	Transition(&tk, StatusPending, t0, &active)

	assert.Equal(t, "b", active)
}

func TestTransition_LeavingTerminalClearsCompletedAt(t *testing.T) {
	done := t0
	tk := Task{ID: "a", Status: StatusCompleted, CompletedAt: &done}

	Transition(&tk, StatusPending, t0.Add(time.Minute), nil)

	assert.Equal(t, StatusPending, tk.Status)
	assert.Nil(t, tk.CompletedAt)
}

func TestTransition_SameStatusOnlyTouchesUpdatedAt(t *testing.T) {
	done := t0
	tk := Task{ID: "a", Status: StatusCompleted, CompletedAt: &done}
	later := t0.Add(time.Hour)

	Transition(&tk, StatusCompleted, later, nil)

	assert.Equal(t, later, tk.UpdatedAt)
	require.NotNil(t, tk.CompletedAt)
	assert.Equal(t, t0, *tk.CompletedAt)
}

func TestTransition_AwaitingApproval(t *testing.T) {
	tk := Task{ID: "a", Status: StatusInProgress}
	active := "a"

	Transition(&tk, StatusAwaitingApproval, t0, &active)

	assert.Equal(t, StatusAwaitingApproval, tk.Status)
	assert.Nil(t, tk.CompletedAt)
	assert.Empty(t, active)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "pending", want: StatusPending},
		{in: "in_progress", want: StatusInProgress},
		{in: "in-progress", want: StatusInProgress},
		{in: "In Progress", want: StatusInProgress},
		{in: " COMPLETED ", want: StatusCompleted},
		{in: "awaiting-approval", want: StatusAwaitingApproval},
		{in: "done", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("Urgent")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, p)

	_, err = ParsePriority("critical")
	require.ErrorIs(t, err, ErrValidation)
}

func TestPriority_Weight(t *testing.T) {
	assert.Greater(t, PriorityUrgent.Weight(), PriorityHigh.Weight())
	assert.Greater(t, PriorityHigh.Weight(), PriorityMedium.Weight())
	assert.Greater(t, PriorityMedium.Weight(), PriorityLow.Weight())
	assert.Zero(t, Priority("bogus").Weight())
	assert.False(t, Priority("bogus").IsValid())
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "In Progress", StatusInProgress.Label())
	assert.Equal(t, "Awaiting Approval", StatusAwaitingApproval.Label())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusAwaitingApproval.IsTerminal())
}
