// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"slices"
	"sync"
	"testing"

	"github.com/colonyops/taskgraph/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus that records every published event. Delivery is
// synchronous, so events are visible as soon as Publish returns.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{EventBus: eventbus.New()}

	sub := tb.Subscribe(func(event eventbus.Event, payload any) error {
		tb.record(event, payload)
		return nil
	})
	t.Cleanup(sub.Unsubscribe)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.events)
}

// Names returns the recorded event names in publish order.
func (tb *Bus) Names() []eventbus.Event {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	names := make([]eventbus.Event, len(tb.events))
	for i, e := range tb.events {
		names[i] = e.Event
	}
	return names
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// Count returns how many times the event was recorded.
func (tb *Bus) Count(event eventbus.Event) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	n := 0
	for _, e := range tb.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Last returns the payload of the most recent occurrence of event.
func (tb *Bus) Last(event eventbus.Event) (any, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for i := len(tb.events) - 1; i >= 0; i-- {
		if tb.events[i].Event == event {
			return tb.events[i].Payload, true
		}
	}
	return nil, false
}

// AssertPublished asserts that an event of the given type was recorded.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if tb.Count(event) == 0 {
		t.Errorf("expected event %q to be published, but it was not", event)
	}
}

// AssertNotPublished asserts that an event of the given type was not recorded.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if n := tb.Count(event); n > 0 {
		t.Errorf("expected event %q to NOT be published, but it was published %d times", event, n)
	}
}

// LastPayload returns the payload of the most recent occurrence of event,
// failing the test when it is missing or has a different type.
func LastPayload[P any](t *testing.T, tb *Bus, event eventbus.Event) P {
	t.Helper()
	var zero P
	raw, ok := tb.Last(event)
	if !ok {
		t.Fatalf("expected event %q to be published, but it was not", event)
		return zero
	}
	p, ok := raw.(P)
	if !ok {
		t.Fatalf("event %q: payload is %T, want %T", event, raw, zero)
		return zero
	}
	return p
}
