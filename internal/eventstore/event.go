package eventstore

import "time"

// Record is one journaled app-state event.
type Record struct {
	ID        int64
	SessionID string
	Action    string
	Value     string
	Timestamp time.Time
	Metadata  map[string]string
}
