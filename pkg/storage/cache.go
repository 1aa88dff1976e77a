package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore wraps a RecordStore with an LRU read cache over Select.
// Any change event on a table drops every cached query for that table, so
// reads after a write always hit the backend. Role lookups bypass this layer
// entirely; only panel data queries are served from cache.
type CachedStore struct {
	RecordStore

	cache *lru.Cache[string, []Row]

	mu   sync.Mutex
	keys map[Table]map[string]struct{}

	invalidators []*Subscription

	// optional hit/miss counters
	OnHit  func(table Table)
	OnMiss func(table Table)
}

// NewCachedStore wraps the store with a read cache of the given size
func NewCachedStore(inner RecordStore, size int) (*CachedStore, error) {
	cache, err := lru.New[string, []Row](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	c := &CachedStore{
		RecordStore: inner,
		cache:       cache,
		keys:        make(map[Table]map[string]struct{}),
	}

	for table := range tableColumns {
		table := table
		sub := inner.Subscribe(table, EventAll, func(Event) {
			c.invalidate(table)
		})
		c.invalidators = append(c.invalidators, sub)
	}
	return c, nil
}

// Select serves matching rows from cache when possible
func (c *CachedStore) Select(ctx context.Context, table Table, filter Filter) ([]Row, error) {
	key := cacheKey(table, filter)

	if rows, ok := c.cache.Get(key); ok {
		if c.OnHit != nil {
			c.OnHit(table)
		}
		return cloneRows(rows), nil
	}
	if c.OnMiss != nil {
		c.OnMiss(table)
	}

	rows, err := c.RecordStore.Select(ctx, table, filter)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, cloneRows(rows))
	c.mu.Lock()
	if c.keys[table] == nil {
		c.keys[table] = make(map[string]struct{})
	}
	c.keys[table][key] = struct{}{}
	c.mu.Unlock()

	return rows, nil
}

// Close releases the invalidation subscriptions and the inner store
func (c *CachedStore) Close() error {
	for _, sub := range c.invalidators {
		c.RecordStore.Unsubscribe(sub)
	}
	return c.RecordStore.Close()
}

func (c *CachedStore) invalidate(table Table) {
	c.mu.Lock()
	keys := c.keys[table]
	c.keys[table] = nil
	c.mu.Unlock()

	for key := range keys {
		c.cache.Remove(key)
	}
}

func cacheKey(table Table, filter Filter) string {
	if len(filter) == 0 {
		return string(table)
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(table))
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, filter[k])
	}
	return b.String()
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}
