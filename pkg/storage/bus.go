package storage

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is a live registration for change events on one table.
// It is owned by the component that opened it.
type Subscription struct {
	id    string
	table Table
	mask  EventType
	fn    func(Event)
}

// ID returns the unique id of the subscription
func (s *Subscription) ID() string { return s.id }

// Table returns the table the subscription watches
func (s *Subscription) Table() Table { return s.table }

// Bus dispatches change events to subscribers in-process.
// Dispatch is synchronous: a mutation returns after every matching callback
// ran, which keeps panel refresh ordering deterministic.
type Bus struct {
	mu   sync.RWMutex
	subs map[Table]map[string]*Subscription
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Table]map[string]*Subscription),
	}
}

// Subscribe registers a callback for events on the table matching the mask
func (b *Bus) Subscribe(table Table, mask EventType, fn func(Event)) *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		table: table,
		mask:  mask,
		fn:    fn,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[string]*Subscription)
	}
	b.subs[table][sub.id] = sub
	return sub
}

// Unsubscribe releases a subscription. Releasing twice is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if m := b.subs[sub.table]; m != nil {
		delete(m, sub.id)
	}
}

// Publish delivers an event to every matching subscriber
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	matched := make([]*Subscription, 0, 4)
	for _, sub := range b.subs[event.Table] {
		if sub.mask&event.Type != 0 {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matched {
		sub.fn(event)
	}
}

// Open returns the number of open subscriptions across all tables
func (b *Bus) Open() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, m := range b.subs {
		n += len(m)
	}
	return n
}
