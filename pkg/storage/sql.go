package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/campushire/portal/pkg/async"
)

// SQLStore is a record store backed by PostgreSQL or SQLite through
// database/sql. Array-valued columns are stored as JSON text so the same
// schema works on both engines.
type SQLStore struct {
	db     *sql.DB
	driver string
	bus    *Bus
	feed   *RedisFeed // optional cross-process fan-out
}

// NewPostgresStore opens a PostgreSQL-backed record store
func NewPostgresStore(url string, maxConns, minConns int) (*SQLStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)
	return newSQLStore(db, "postgres")
}

// NewSQLiteStore opens a SQLite-backed record store
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)
	return newSQLStore(db, "sqlite3")
}

// NewSQLStoreFromDB wraps an existing database handle (used by tests)
func NewSQLStoreFromDB(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, bus: NewBus()}
}

func newSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	store := &SQLStore{db: db, driver: driver, bus: NewBus()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// DB exposes the underlying handle for health checks
func (s *SQLStore) DB() *sql.DB { return s.db }

// Bus exposes the store's event bus (open-subscription accounting)
func (s *SQLStore) Bus() *Bus { return s.bus }

// AttachFeed wires a Redis feed so change events reach other replicas.
// Remote events arriving over the feed are republished on the local bus.
func (s *SQLStore) AttachFeed(feed *RedisFeed) {
	s.feed = feed
}

func (s *SQLStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			role TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			positions TEXT NOT NULL DEFAULT '[]',
			deadline TEXT NOT NULL DEFAULT '',
			requirements TEXT NOT NULL DEFAULT '[]',
			location TEXT NOT NULL DEFAULT '',
			posted_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			course TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			resume_url TEXT NOT NULL DEFAULT '',
			resume_status TEXT NOT NULL DEFAULT 'pending',
			resume_notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_students_user_id ON students(user_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) placeholder(i int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// whereClause builds a deterministic WHERE clause from the filter
func (s *SQLStore) whereClause(table Table, filter Filter, argOffset int) (string, []interface{}, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		if !knownColumn(table, k) {
			return "", nil, fmt.Errorf("unknown column %q in filter for table %s", k, table)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for i, k := range keys {
		conds = append(conds, fmt.Sprintf("%s = %s", k, s.placeholder(argOffset+i+1)))
		args = append(args, encodeValue(table, k, filter[k]))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// Select returns all rows matching the filter
func (s *SQLStore) Select(ctx context.Context, table Table, filter Filter) ([]Row, error) {
	if !knownTable(table) {
		return nil, ErrUnknownTable
	}

	where, args, err := s.whereClause(table, filter, 0)
	if err != nil {
		return nil, err
	}

	columns := tableColumns[table]
	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(columns, ", "), table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s failed: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s failed: %w", table, err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = decodeValue(table, col, values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Insert stores a row, assigning an id when the caller did not set one
func (s *SQLStore) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	if !knownTable(table) {
		return nil, ErrUnknownTable
	}

	stored := copyRow(row)
	if stored["id"] == nil || stored["id"] == "" {
		stored["id"] = uuid.NewString()
	}

	keys := make([]string, 0, len(stored))
	for k := range stored {
		if !knownColumn(table, k) {
			return nil, fmt.Errorf("unknown column %q for table %s", k, table)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, 0, len(keys))
	marks := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for i, k := range keys {
		cols = append(cols, k)
		marks = append(marks, s.placeholder(i+1))
		args = append(args, encodeValue(table, k, stored[k]))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert into %s failed: %w", table, err)
	}

	s.publish(Event{Table: table, Type: EventInsert, Row: copyRow(stored)})
	return stored, nil
}

// Update patches all rows matching the filter
func (s *SQLStore) Update(ctx context.Context, table Table, filter Filter, patch Row) error {
	if !knownTable(table) {
		return ErrUnknownTable
	}
	if len(patch) == 0 {
		return nil
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		if !knownColumn(table, k) {
			return fmt.Errorf("unknown column %q for table %s", k, table)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = %s", k, s.placeholder(i+1)))
		args = append(args, encodeValue(table, k, patch[k]))
	}

	where, whereArgs, err := s.whereClause(table, filter, len(keys))
	if err != nil {
		return err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(sets, ", "), where)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s failed: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s failed: %w", table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	// Re-read so subscribers see full rows, not just the patch
	changed, err := s.Select(ctx, table, filter)
	if err == nil {
		for _, row := range changed {
			s.publish(Event{Table: table, Type: EventUpdate, Row: row})
		}
	}
	return nil
}

// Delete removes all rows matching the filter
func (s *SQLStore) Delete(ctx context.Context, table Table, filter Filter) error {
	if !knownTable(table) {
		return ErrUnknownTable
	}

	// Capture rows before deletion for subscriber payloads
	doomed, err := s.Select(ctx, table, filter)
	if err != nil {
		return err
	}
	if len(doomed) == 0 {
		return ErrNotFound
	}

	where, args, err := s.whereClause(table, filter, 0)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s%s", table, where)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete from %s failed: %w", table, err)
	}

	for _, row := range doomed {
		s.publish(Event{Table: table, Type: EventDelete, Row: row})
	}
	return nil
}

// Subscribe registers a change callback on the store's bus
func (s *SQLStore) Subscribe(table Table, mask EventType, fn func(Event)) *Subscription {
	return s.bus.Subscribe(table, mask, fn)
}

// Unsubscribe releases a subscription
func (s *SQLStore) Unsubscribe(sub *Subscription) {
	s.bus.Unsubscribe(sub)
}

// Close releases the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) publish(event Event) {
	s.bus.Publish(event)
	if s.feed != nil {
		// Fan out to other replicas off the write path. Local subscribers
		// already saw the event through the bus.
		feed := s.feed
		async.SafeGo(context.Background(), 5*time.Second, "feed publish", func(ctx context.Context) error {
			return feed.Publish(ctx, event)
		})
	}
}

// encodeValue serializes array columns as JSON text for SQL storage
func encodeValue(table Table, column string, value interface{}) interface{} {
	if jsonColumns[table][column] {
		data, err := json.Marshal(value)
		if err != nil {
			return "[]"
		}
		return string(data)
	}
	return value
}

// decodeValue restores array columns and normalizes driver scan types
func decodeValue(table Table, column string, value interface{}) interface{} {
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	if jsonColumns[table][column] {
		str, ok := value.(string)
		if !ok {
			return value
		}
		var arr []string
		if err := json.Unmarshal([]byte(str), &arr); err != nil {
			return value
		}
		return arr
	}
	if n, ok := value.(int64); ok && column == "year" {
		return int(n)
	}
	return value
}
