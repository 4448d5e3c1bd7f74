// Package eventbus provides a synchronous publish/subscribe bus that
// announces task graph changes to interested components.
package eventbus

import (
	"fmt"
	"sync"
)

// Event names a kind of graph change.
type Event string

// Handler receives every event published on the bus. A returned error is
// reported through the OnError hooks and does not stop delivery.
type Handler func(event Event, payload any) error

type subscriber struct {
	id    uint64
	event Event // empty matches every event
	fn    Handler
}

// EventBus delivers events to subscribers in registration order on the
// publisher's goroutine. A failing or panicking subscriber is isolated:
// the failure is reported through hooks and later subscribers still run.
type EventBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber

	hooks hooks
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{}
}

// Subscription is the handle returned by Subscribe. Unsubscribe is idempotent.
type Subscription struct {
	bus  *EventBus
	id   uint64
	once sync.Once
}

// Unsubscribe removes the subscriber. Events published afterwards are not
// delivered to it.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

// Subscribe registers fn for every event.
func (bus *EventBus) Subscribe(fn Handler) *Subscription {
	return bus.subscribe("", fn)
}

// SubscribeEvent registers fn for a single event name.
func (bus *EventBus) SubscribeEvent(event Event, fn Handler) *Subscription {
	return bus.subscribe(event, fn)
}

// Len returns the number of active subscribers.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Publish delivers payload to every matching subscriber, then runs the
// OnPublish hooks. It returns after all subscribers have been called.
func (bus *EventBus) Publish(event Event, payload any) {
	bus.mu.RLock()
	subs := make([]subscriber, 0, len(bus.subs))
	for _, s := range bus.subs {
		if s.event == "" || s.event == event {
			subs = append(subs, s)
		}
	}
	bus.mu.RUnlock()

	for _, s := range subs {
		bus.deliver(s, event, payload)
	}

	bus.runOnPublish(event, payload)
}

func (bus *EventBus) subscribe(event Event, fn Handler) *Subscription {
	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.subs = append(bus.subs, subscriber{id: id, event: event, fn: fn})
	bus.mu.Unlock()

	bus.runOnSubscribe(event)
	return &Subscription{bus: bus, id: id}
}

func (bus *EventBus) remove(id uint64) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, s := range bus.subs {
		if s.id == id {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

func (bus *EventBus) deliver(s subscriber, event Event, payload any) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(event, payload, r)
		}
	}()

	if err := s.fn(event, payload); err != nil {
		bus.runOnError(event, payload, fmt.Errorf("subscriber %d: %w", s.id, err))
	}
}
