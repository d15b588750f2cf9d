// Package eventstore is the durable journal of app-state events
// (daemon_status, identity_progress, navigated) recorded per client session.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving app-state records.
type Store interface {
	// Append adds a new record; ID and a zero Timestamp are filled in by the store.
	Append(ctx context.Context, rec Record) error

	// BySession retrieves all records of a session in insertion order.
	BySession(ctx context.Context, sessionID string) ([]Record, error)

	// Range retrieves records within a time range.
	Range(ctx context.Context, start, end time.Time) ([]Record, error)

	// CountByAction counts a session's records per action.
	CountByAction(ctx context.Context, sessionID string) (map[string]int, error)

	// Close closes the store and releases resources.
	Close() error
}
