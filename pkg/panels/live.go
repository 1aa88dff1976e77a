package panels

import (
	"sort"
	"sync"

	"github.com/campushire/portal/pkg/storage"
)

// liveSet mirrors a table slice in memory, kept current by change events
type liveSet struct {
	mu   sync.RWMutex
	rows map[string]storage.Row
}

func newLiveSet() *liveSet {
	return &liveSet{rows: make(map[string]storage.Row)}
}

func (s *liveSet) load(rows []storage.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[string]storage.Row, len(rows))
	for _, row := range rows {
		if id, ok := row["id"].(string); ok {
			s.rows[id] = row
		}
	}
}

func (s *liveSet) apply(event storage.Event) {
	id, ok := event.Row["id"].(string)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch event.Type {
	case storage.EventInsert, storage.EventUpdate:
		s.rows[id] = event.Row
	case storage.EventDelete:
		delete(s.rows, id)
	}
}

// list returns the rows ordered by id for stable rendering
func (s *liveSet) list() []storage.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]storage.Row, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.rows[id])
	}
	return out
}

func (s *liveSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
