package eventbus

import "sync"

// hooks are observers of bus activity, used for logging and tests. They run
// synchronously on the goroutine that triggered them.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onSubscribe []func(Event)
	onError     []func(Event, any, error)
	onPanic     []func(Event, any, any)
}

func addHook[F any](mu *sync.RWMutex, list *[]F, fn F) {
	mu.Lock()
	*list = append(*list, fn)
	mu.Unlock()
}

// copyHooks returns a copy of list so hooks may register further hooks
// without deadlocking.
func copyHooks[F any](mu *sync.RWMutex, list *[]F) []F {
	mu.RLock()
	defer mu.RUnlock()
	return append([]F(nil), *list...)
}

// OnPublish fires after an event has been delivered to every subscriber.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	addHook(&bus.hooks.mu, &bus.hooks.onPublish, fn)
}

// OnSubscribe fires after a subscriber is added. The event is empty for
// catch-all subscribers.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	addHook(&bus.hooks.mu, &bus.hooks.onSubscribe, fn)
}

// OnError fires when a subscriber returns an error.
func (bus *EventBus) OnError(fn func(Event, any, error)) {
	addHook(&bus.hooks.mu, &bus.hooks.onError, fn)
}

// OnPanic fires when a subscriber panics. A panic inside an OnPanic hook is
// swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	addHook(&bus.hooks.mu, &bus.hooks.onPanic, fn)
}

func (bus *EventBus) runOnPublish(event Event, payload any) {
	for _, fn := range copyHooks(&bus.hooks.mu, &bus.hooks.onPublish) {
		fn(event, payload)
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range copyHooks(&bus.hooks.mu, &bus.hooks.onSubscribe) {
		fn(event)
	}
}

func (bus *EventBus) runOnError(event Event, payload any, err error) {
	for _, fn := range copyHooks(&bus.hooks.mu, &bus.hooks.onError) {
		fn(event, payload, err)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range copyHooks(&bus.hooks.mu, &bus.hooks.onPanic) {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
