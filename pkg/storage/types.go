package storage

import (
	"context"
	"errors"
)

// Table identifies a record store table
type Table string

const (
	TableProfiles  Table = "profiles"
	TableCompanies Table = "companies"
	TableStudents  Table = "students"
)

// Row is a single record keyed by column name
type Row map[string]interface{}

// Filter matches rows by column equality; an empty filter matches all rows
type Filter map[string]interface{}

// EventType is a bitmask of row-change event kinds
type EventType int

const (
	EventInsert EventType = 1 << iota
	EventUpdate
	EventDelete

	EventAll = EventInsert | EventUpdate | EventDelete
)

func (t EventType) String() string {
	switch t {
	case EventInsert:
		return "insert"
	case EventUpdate:
		return "update"
	case EventDelete:
		return "delete"
	default:
		return "multiple"
	}
}

// Event describes a committed row change
type Event struct {
	Table Table     `json:"table"`
	Type  EventType `json:"type"`
	Row   Row       `json:"row,omitempty"`
}

// ErrNotFound is returned by Update/Delete when the filter matches no rows
var ErrNotFound = errors.New("no matching rows")

// ErrUnknownTable is returned for tables outside the portal schema
var ErrUnknownTable = errors.New("unknown table")

// RecordStore is the persistence contract the portal depends on. Every
// backend provides CRUD over the fixed schema plus change subscriptions.
type RecordStore interface {
	Select(ctx context.Context, table Table, filter Filter) ([]Row, error)
	Insert(ctx context.Context, table Table, row Row) (Row, error)
	Update(ctx context.Context, table Table, filter Filter, patch Row) error
	Delete(ctx context.Context, table Table, filter Filter) error

	// Subscribe registers a callback for change events on the table matching
	// the event mask. The returned subscription must be released with
	// Unsubscribe when the owner unmounts.
	Subscribe(table Table, mask EventType, fn func(Event)) *Subscription
	Unsubscribe(sub *Subscription)

	Close() error
}

// tableColumns whitelists the columns of each table. SQL queries are built
// only from these names.
var tableColumns = map[Table][]string{
	TableProfiles:  {"id", "email", "name", "role"},
	TableCompanies: {"id", "name", "description", "positions", "deadline", "requirements", "location", "posted_by"},
	TableStudents:  {"id", "user_id", "name", "email", "course", "year", "resume_url", "resume_status", "resume_notes"},
}

// jsonColumns hold JSON-encoded arrays in SQL backends
var jsonColumns = map[Table]map[string]bool{
	TableCompanies: {"positions": true, "requirements": true},
}

func knownTable(table Table) bool {
	_, ok := tableColumns[table]
	return ok
}

func knownColumn(table Table, column string) bool {
	for _, c := range tableColumns[table] {
		if c == column {
			return true
		}
	}
	return false
}
