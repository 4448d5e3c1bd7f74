package taskgraph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/colonyops/taskgraph/internal/core/codec"
	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/task"
)

// Export renders the tasks of listID, or of the current list when listID is
// empty, in the given format.
func (g *Graph) Export(ctx context.Context, format codec.Format, listID string) (data []byte, err error) {
	_, span := g.startSpan(ctx, "export", attribute.String("format", string(format)))
	defer func() { endSpan(span, err) }()

	g.mu.RLock()
	if listID == "" {
		listID = g.currentListID
	}
	l, ok := g.lists[listID]
	if !ok {
		g.mu.RUnlock()
		return nil, notFound("list", listID)
	}
	doc := codec.Document{
		ExportedAt: g.now(),
		ListID:     l.ID,
		ListName:   l.Name,
		Tasks:      g.tasksIn(listID),
	}
	g.mu.RUnlock()

	span.SetAttributes(attribute.String("list_id", listID), attribute.Int("tasks", len(doc.Tasks)))
	return codec.Encode(format, doc)
}

// Import creates one task per record of data in the current list. Imported
// tasks get fresh ids; parent, subtask and dependency links are not carried
// over. A payload that does not parse returns an error wrapping
// task.ErrFormat and changes nothing.
func (g *Graph) Import(ctx context.Context, data []byte, format codec.Format) (imported []task.Task, err error) {
	ctx, span := g.startSpan(ctx, "import", attribute.String("format", string(format)))
	defer func() { endSpan(span, err) }()

	inputs, err := codec.Decode(format, data)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	var listID string
	err = g.mutate(ctx, func(now time.Time) error {
		listID = g.currentListID
		for _, in := range inputs {
			in.ListID = listID
			in.ParentID = ""
			in.Dependencies = nil
			imported = append(imported, g.insert(in, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("list_id", listID), attribute.Int("tasks", len(imported)))
	g.bus.PublishTasksImported(eventbus.TasksImportedPayload{ListID: listID, Tasks: imported})
	return imported, nil
}
