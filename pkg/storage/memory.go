package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process record store used for the demo deployment and
// tests. Rows are deep-copied on the way in and out so callers never share
// mutable state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[Table][]Row
	bus  *Bus
}

// NewMemoryStore creates an empty in-memory record store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[Table][]Row),
		bus:  NewBus(),
	}
}

// Bus exposes the store's event bus (open-subscription accounting)
func (s *MemoryStore) Bus() *Bus { return s.bus }

// Select returns copies of all rows matching the filter
func (s *MemoryStore) Select(ctx context.Context, table Table, filter Filter) ([]Row, error) {
	if !knownTable(table) {
		return nil, ErrUnknownTable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Row
	for _, row := range s.rows[table] {
		if matches(row, filter) {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

// Insert stores a row, assigning an id when the caller did not set one
func (s *MemoryStore) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	if !knownTable(table) {
		return nil, ErrUnknownTable
	}

	stored := copyRow(row)
	if stored["id"] == nil || stored["id"] == "" {
		stored["id"] = uuid.NewString()
	}

	s.mu.Lock()
	s.rows[table] = append(s.rows[table], stored)
	s.mu.Unlock()

	s.bus.Publish(Event{Table: table, Type: EventInsert, Row: copyRow(stored)})
	return copyRow(stored), nil
}

// Update patches all rows matching the filter
func (s *MemoryStore) Update(ctx context.Context, table Table, filter Filter, patch Row) error {
	if !knownTable(table) {
		return ErrUnknownTable
	}

	var changed []Row
	s.mu.Lock()
	for _, row := range s.rows[table] {
		if matches(row, filter) {
			for k, v := range patch {
				row[k] = v
			}
			changed = append(changed, copyRow(row))
		}
	}
	s.mu.Unlock()

	if len(changed) == 0 {
		return ErrNotFound
	}
	for _, row := range changed {
		s.bus.Publish(Event{Table: table, Type: EventUpdate, Row: row})
	}
	return nil
}

// Delete removes all rows matching the filter
func (s *MemoryStore) Delete(ctx context.Context, table Table, filter Filter) error {
	if !knownTable(table) {
		return ErrUnknownTable
	}

	var removed []Row
	s.mu.Lock()
	kept := s.rows[table][:0]
	for _, row := range s.rows[table] {
		if matches(row, filter) {
			removed = append(removed, copyRow(row))
		} else {
			kept = append(kept, row)
		}
	}
	s.rows[table] = kept
	s.mu.Unlock()

	if len(removed) == 0 {
		return ErrNotFound
	}
	for _, row := range removed {
		s.bus.Publish(Event{Table: table, Type: EventDelete, Row: row})
	}
	return nil
}

// Subscribe registers a change callback on the store's bus
func (s *MemoryStore) Subscribe(table Table, mask EventType, fn func(Event)) *Subscription {
	return s.bus.Subscribe(table, mask, fn)
}

// Unsubscribe releases a subscription
func (s *MemoryStore) Unsubscribe(sub *Subscription) {
	s.bus.Unsubscribe(sub)
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error { return nil }

func matches(row Row, filter Filter) bool {
	for k, want := range filter {
		if row[k] != want {
			return false
		}
	}
	return true
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		if vs, ok := v.([]string); ok {
			cp := make([]string, len(vs))
			copy(cp, vs)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}
