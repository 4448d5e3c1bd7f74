package logging

import "context"

type contextKey string

const (
	listIDKey contextKey = "list_id"
	taskIDKey contextKey = "task_id"
)

// WithListID adds a list ID to the context.
func WithListID(ctx context.Context, listID string) context.Context {
	return context.WithValue(ctx, listIDKey, listID)
}

// WithTaskID adds a task ID to the context.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// GetListID retrieves the list ID from the context.
// Returns empty string if not present.
func GetListID(ctx context.Context) string {
	if id, ok := ctx.Value(listIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTaskID retrieves the task ID from the context.
// Returns empty string if not present.
func GetTaskID(ctx context.Context) string {
	if id, ok := ctx.Value(taskIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTask adds both the owning list and the task ID to the context.
func WithTask(ctx context.Context, listID, taskID string) context.Context {
	return WithTaskID(WithListID(ctx, listID), taskID)
}
