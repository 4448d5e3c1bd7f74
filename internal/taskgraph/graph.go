// Package taskgraph is the task graph service. Graph owns the canonical set of
// tasks and lists, enforces the structural invariants between them, persists
// every mutation through a kv.KV backend and announces it on the event bus.
package taskgraph

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/kv"
	"github.com/colonyops/taskgraph/internal/core/logging"
	"github.com/colonyops/taskgraph/internal/core/planner"
	"github.com/colonyops/taskgraph/internal/core/task"
	"github.com/colonyops/taskgraph/internal/telemetry"
	"github.com/colonyops/taskgraph/pkg/randid"
)

const (
	// Namespace scopes the snapshot key inside the storage backend.
	Namespace = "taskgraph"
	// DefaultStorageKey is the key the snapshot is saved under.
	DefaultStorageKey = "state"

	shortIDLength = 8
)

// Option configures a Graph.
type Option func(*Graph)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) { g.now = now }
}

// WithStorageKey changes the key the snapshot is stored under.
func WithStorageKey(key string) Option {
	return func(g *Graph) { g.key = key }
}

// WithIDGenerator replaces the task id generator (uuid v4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) { g.newID = fn }
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(g *Graph) { g.tracer = tp.Tracer(telemetry.InstrumentationName) }
}

// Graph is the task graph. It is safe for concurrent use: mutations are
// serialized behind a write lock and readers receive deep copies.
type Graph struct {
	store   *kv.TypedKV[task.Snapshot]
	key     string
	bus     *eventbus.EventBus
	planner planner.Planner
	log     zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() string

	mu            sync.RWMutex
	tasks         map[string]*task.Task
	order         []string
	lists         map[string]*task.List
	listOrder     []string
	currentListID string
	activeTaskID  string
}

// New creates a graph backed by store. A nil bus gets a private bus with no
// subscribers and a nil planner falls back to the built-in keyword rules.
// Call Init before use.
func New(store kv.KV, bus *eventbus.EventBus, p planner.Planner, log zerolog.Logger, opts ...Option) *Graph {
	if bus == nil {
		bus = eventbus.New()
	}
	if p == nil {
		p = planner.Default()
	}

	g := &Graph{
		store:   kv.Scoped[task.Snapshot](store, Namespace),
		key:     DefaultStorageKey,
		bus:     bus,
		planner: p,
		log:     logging.For(log, "taskgraph"),
		tracer:  telemetry.Tracer(),
		now:     time.Now,
		newID:   uuid.NewString,
		tasks:   make(map[string]*task.Task),
		lists:   make(map[string]*task.List),
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init loads the persisted snapshot. A missing snapshot is a first run and
// seeds the default list. Load failures are logged and the graph starts
// empty; they are never returned.
func (g *Graph) Init(ctx context.Context) {
	ctx, span := g.startSpan(ctx, "init")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.reset()

	snap, found, err := g.store.Get(ctx, g.key)
	switch {
	case err != nil:
		g.log.Error().Err(err).Str("key", g.key).Msg("failed to load task graph, starting empty")
	case found:
		g.load(snap)
		g.log.Debug().
			Int("tasks", len(g.order)).
			Int("lists", len(g.listOrder)).
			Msg("task graph loaded")
	}

	now := g.now()
	seeded := false
	if _, ok := g.lists[task.DefaultListID]; !ok {
		def := task.DefaultList(now)
		g.lists[def.ID] = &def
		g.listOrder = slices.Insert(g.listOrder, 0, def.ID)
		seeded = true
	}
	if _, ok := g.lists[g.currentListID]; !ok {
		g.currentListID = task.DefaultListID
	}

	g.repair()

	if !found || seeded {
		g.persist(ctx)
	}
}

func (g *Graph) reset() {
	g.tasks = make(map[string]*task.Task)
	g.order = nil
	g.lists = make(map[string]*task.List)
	g.listOrder = nil
	g.currentListID = ""
	g.activeTaskID = ""
}

func (g *Graph) load(snap task.Snapshot) {
	for _, e := range snap.Lists {
		if e.ID == "" || g.lists[e.ID] != nil {
			continue
		}
		l := e.Value
		l.ID = e.ID
		g.lists[e.ID] = &l
		g.listOrder = append(g.listOrder, e.ID)
	}

	for _, e := range snap.Tasks {
		if e.ID == "" || g.tasks[e.ID] != nil {
			continue
		}
		t := e.Value.Clone()
		t.ID = e.ID
		g.tasks[e.ID] = &t
		g.order = append(g.order, e.ID)
	}

	g.currentListID = snap.CurrentListID
	g.activeTaskID = snap.ActiveTaskID
}

// repair restores the structural invariants on a loaded snapshot: tasks on
// missing lists move to the default list, dangling parent and subtask links
// are dropped, and the active pointer must reference a running task.
func (g *Graph) repair() {
	for _, id := range g.order {
		t := g.tasks[id]

		if _, ok := g.lists[t.ListID]; !ok {
			g.log.Warn().Str("task_id", id).Str("list_id", t.ListID).Msg("task references missing list, moving to default")
			t.ListID = task.DefaultListID
		}

		if t.ParentID != "" {
			parent, ok := g.tasks[t.ParentID]
			if !ok || t.ParentID == id {
				g.log.Warn().Str("task_id", id).Str("parent_id", t.ParentID).Msg("task references missing parent, detaching")
				t.ParentID = ""
			} else if !parent.HasSubtask(id) {
				parent.Subtasks = append(parent.Subtasks, id)
			}
		}

		seen := make(map[string]bool, len(t.Subtasks))
		t.Subtasks = slices.DeleteFunc(t.Subtasks, func(child string) bool {
			c, ok := g.tasks[child]
			drop := !ok || c.ParentID != id || seen[child]
			seen[child] = true
			return drop
		})
	}

	if active, ok := g.tasks[g.activeTaskID]; !ok || active.Status != task.StatusInProgress {
		g.activeTaskID = ""
	}
}

func (g *Graph) snapshot() task.Snapshot {
	snap := task.Snapshot{
		Tasks:         make([]task.Entry[task.Task], 0, len(g.order)),
		Lists:         make([]task.Entry[task.List], 0, len(g.listOrder)),
		CurrentListID: g.currentListID,
		ActiveTaskID:  g.activeTaskID,
	}
	for _, id := range g.order {
		snap.Tasks = append(snap.Tasks, task.Entry[task.Task]{ID: id, Value: *g.tasks[id]})
	}
	for _, id := range g.listOrder {
		snap.Lists = append(snap.Lists, task.Entry[task.List]{ID: id, Value: *g.lists[id]})
	}
	return snap
}

// persist writes the whole graph. The in-memory graph stays authoritative for
// the session, so failures are logged and never returned. Callers hold the
// write lock.
func (g *Graph) persist(ctx context.Context) {
	if err := g.store.Set(ctx, g.key, g.snapshot()); err != nil {
		g.log.Error().Ctx(ctx).Err(err).Str("key", g.key).Msg("failed to persist task graph")
	}
}

// mutate runs fn under the write lock and persists once when fn succeeds. fn
// must leave the graph untouched when it returns an error.
func (g *Graph) mutate(ctx context.Context, fn func(now time.Time) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := fn(g.now()); err != nil {
		return err
	}
	g.persist(ctx)
	return nil
}

// startSpan opens a span for op. task_id and list_id attributes are also
// stored on the returned context so log events carry them.
func (g *Graph) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	for _, a := range attrs {
		switch a.Key {
		case "task_id":
			ctx = logging.WithTaskID(ctx, a.Value.AsString())
		case "list_id":
			ctx = logging.WithListID(ctx, a.Value.AsString())
		}
	}
	return g.tracer.Start(ctx, "taskgraph."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, task.ErrNotFound)
}

func (g *Graph) newShortID(taken func(string) bool) string {
	for {
		id := randid.Generate(shortIDLength)
		if !taken(id) {
			return id
		}
	}
}

// GetTask returns a copy of the task with the given id.
func (g *Graph) GetTask(id string) (task.Task, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.tasks[id]
	if !ok {
		return task.Task{}, notFound("task", id)
	}
	return t.Clone(), nil
}

// ActiveTask returns the task most recently moved into in_progress, if it is
// still running.
func (g *Graph) ActiveTask() (task.Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.tasks[g.activeTaskID]
	if !ok {
		return task.Task{}, false
	}
	return t.Clone(), true
}

// GetAllTasks returns every task in creation order, or only the tasks of
// listID when it is not empty.
func (g *Graph) GetAllTasks(listID string) []task.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tasksIn(listID)
}

func (g *Graph) tasksIn(listID string) []task.Task {
	out := make([]task.Task, 0, len(g.order))
	for _, id := range g.order {
		t := g.tasks[id]
		if listID != "" && t.ListID != listID {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// GetStats counts the tasks of listID (all lists when empty) per status.
func (g *Graph) GetStats(listID string) task.Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return task.ComputeStats(g.tasksIn(listID), g.now())
}

// NextTask returns the task that should be worked on next. listID restricts
// the candidates to one list; dependencies are always resolved against the
// whole graph.
func (g *Graph) NextTask(listID string) (task.Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return task.SelectNext(g.tasksIn(listID), func(id string) (task.Task, bool) {
		t, ok := g.tasks[id]
		if !ok {
			return task.Task{}, false
		}
		return *t, true
	})
}
