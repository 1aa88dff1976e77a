// Package storage implements the portal's record store: tabular CRUD plus
// row-change subscriptions over the profiles, companies and students tables.
//
// Three backends share one interface:
//   - MemoryStore: process-local, used for the demo deployment and tests
//   - SQLStore: PostgreSQL (lib/pq) or SQLite (mattn/go-sqlite3)
//
// Mutations publish change events on an in-process Bus. When a Redis feed is
// attached, events also fan out across replicas via pub/sub, so a panel
// subscription fires no matter which instance performed the write. Panels own
// their subscriptions and must release them on unmount; the Bus tracks the
// open count so leaks are observable.
package storage
