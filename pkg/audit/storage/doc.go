// Package storage implements audit.Store.
//
// SQLStore runs on sqlx with three drivers:
//
//   - sqlite3: github.com/mattn/go-sqlite3 (cgo, default)
//   - sqlite: modernc.org/sqlite (pure Go, for CGO_ENABLED=0 builds)
//   - postgres: github.com/lib/pq
//
// The schema and the ON CONFLICT upsert are shared by all three. Timestamps
// are stored as unix nanoseconds.
//
// MemoryStore keeps records in process and is used by tests and dry runs.
package storage
