/*
Package storage implements the durable, append-only usage event store.

Events are inserted one at a time and read back with optional equality
filters on tab and filename and an inclusive range on the formatted
timestamp. Nothing in this package updates or deletes an event.

Drivers: SQLite (modernc.org/sqlite, pure Go, the default), Postgres
(lib/pq), MongoDB (the original deployment's document shape), and an
in-memory store for tests.
*/
package storage

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrClosed is returned when an operation is attempted on a closed store.
var ErrClosed = errors.New("storage is closed")

// Storage defines the interface for persistent event storage.
type Storage interface {
	// Init opens connections and prepares the schema. Safe to call more than once.
	Init(ctx context.Context) error

	// RecordUsage appends an event and returns the id the store assigned to it.
	// Any id already present on the event is ignored.
	RecordUsage(ctx context.Context, event UsageEvent) (string, error)

	// GetUsageHistory returns the events matching filter in insertion order.
	GetUsageHistory(ctx context.Context, filter Filter) ([]UsageEvent, error)

	// Close releases the underlying connection.
	Close() error
}
