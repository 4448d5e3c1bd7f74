package logging

import (
	"context"
	"testing"
)

func TestWithListID(t *testing.T) {
	ctx := context.Background()
	listID := "work"

	ctx = WithListID(ctx, listID)
	got := GetListID(ctx)

	if got != listID {
		t.Errorf("GetListID() = %q, want %q", got, listID)
	}
}

func TestWithTaskID(t *testing.T) {
	ctx := context.Background()
	taskID := "b1e4"

	ctx = WithTaskID(ctx, taskID)
	got := GetTaskID(ctx)

	if got != taskID {
		t.Errorf("GetTaskID() = %q, want %q", got, taskID)
	}
}

func TestGetListID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetListID(ctx)

	if got != "" {
		t.Errorf("GetListID() = %q, want empty string", got)
	}
}

func TestGetTaskID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetTaskID(ctx)

	if got != "" {
		t.Errorf("GetTaskID() = %q, want empty string", got)
	}
}

func TestBothIDs(t *testing.T) {
	ctx := context.Background()
	listID := "inbox"
	taskID := "a9"

	ctx = WithListID(ctx, listID)
	ctx = WithTaskID(ctx, taskID)

	if got := GetListID(ctx); got != listID {
		t.Errorf("GetListID() = %q, want %q", got, listID)
	}

	if got := GetTaskID(ctx); got != taskID {
		t.Errorf("GetTaskID() = %q, want %q", got, taskID)
	}
}
