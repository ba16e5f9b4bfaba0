package events

import (
	"sync"

	"github.com/jscyril/mediashell/api"
)

// Bus distributes media element notifications using channels
type Bus struct {
	subscribers map[api.EventType][]*Subscription
	closed      bool
	mu          sync.RWMutex
}

// Subscription is an owned listener handle. It must be closed by whoever
// subscribed so no callback runs against a released element.
type Subscription struct {
	bus   *Bus
	ch    chan api.MediaEvent
	types []api.EventType
	once  sync.Once
}

// C returns the channel events are delivered on. It is closed when the
// subscription or the bus is closed.
func (s *Subscription) C() <-chan api.MediaEvent {
	return s.ch
}

// Close detaches the subscription from its bus. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.remove(s)
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[api.EventType][]*Subscription),
	}
}

// Subscribe returns a subscription receiving the given event types
func (b *Bus) Subscribe(types ...api.EventType) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		bus:   b,
		ch:    make(chan api.MediaEvent, 16),
		types: types,
	}
	if b.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], sub)
	}
	return sub
}

// SubscribeAll returns a subscription receiving every event type
func (b *Bus) SubscribeAll() *Subscription {
	return b.Subscribe(api.AllEventTypes...)
}

// Publish broadcasts an event to all subscribers of that event type
func (b *Bus) Publish(event api.MediaEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers[event.Type] {
		sub.send(event)
	}
}

// send delivers event without blocking. A subscriber that is behind loses
// its oldest buffered events so the newest state always arrives.
func (s *Subscription) send(event api.MediaEvent) {
	for {
		select {
		case s.ch <- event:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for an event type
func (b *Bus) Subscribers(t api.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[t])
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range sub.types {
		subs := b.subscribers[t]
		for i, s := range subs {
			if s == sub {
				b.subscribers[t] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subscribers[t]) == 0 {
			delete(b.subscribers, t)
		}
	}
	sub.once.Do(func() { close(sub.ch) })
}

// Close closes all subscriber channels
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.subscribers {
		for _, sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
		}
	}
	b.subscribers = make(map[api.EventType][]*Subscription)
	b.closed = true
}
