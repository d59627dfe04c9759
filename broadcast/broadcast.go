// Package broadcast provides the in-process synchronization bus that keeps
// independent session instances convergent. Delivery is best-effort, ordered
// by publish order and dispatched synchronously on the publisher's goroutine.
// There is no cross-process or cross-device delivery.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

// Event is the zero-payload signal published after any credential mutation.
// Subscribers re-derive their state from the credential store; the event
// itself carries nothing.
type Event struct{}

// Handler consumes a published Event.
type Handler func(Event)

// Bus is a process-wide publish/subscribe channel for auth change events.
type Bus struct {
	lock        sync.RWMutex
	order       []string
	subscribers map[string]Handler
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]Handler),
	}
}

// Subscribe registers a handler and returns its Subscription. Callers must
// release the subscription on teardown so handlers do not leak across
// remounts of a UI surface.
func (b *Bus) Subscribe(handler Handler) *Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()

	id := uuid.New().String()
	b.order = append(b.order, id)
	b.subscribers[id] = handler
	return &Subscription{id: id, bus: b}
}

// Publish dispatches the event to every current subscriber in subscribe
// order. The subscriber snapshot is taken before dispatch, so handlers may
// subscribe, unsubscribe or publish without deadlocking the bus.
func (b *Bus) Publish(event Event) {
	b.lock.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		if handler, ok := b.subscribers[id]; ok {
			handlers = append(handlers, handler)
		}
	}
	b.lock.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.subscribers)
}

func (b *Bus) unsubscribe(id string) {
	b.lock.Lock()
	defer b.lock.Unlock()

	delete(b.subscribers, id)
	for i, subscriberID := range b.order {
		if subscriberID == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Subscription is a handle to a live bus registration.
type Subscription struct {
	id   string
	bus  *Bus
	once sync.Once
}

// Unsubscribe removes the handler from the bus. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.unsubscribe(s.id)
	})
}
