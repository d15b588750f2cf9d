package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based journal.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, wrap(ErrInitializeSchemaFailed, err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_state_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		value TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_session_id ON app_state_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON app_state_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON app_state_events(action);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new record to the journal.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	var metadataJSON []byte
	if rec.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(rec.Metadata)
		if err != nil {
			return wrap(ErrEventAppendFailed, err)
		}
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO app_state_events (session_id, action, value, timestamp, metadata) VALUES (?, ?, ?, ?, ?)",
		rec.SessionID, rec.Action, rec.Value, ts.UnixMilli(), metadataJSON,
	)
	if err != nil {
		return wrap(ErrEventAppendFailed, err)
	}
	return nil
}

const selectRecords = "SELECT id, session_id, action, value, timestamp, metadata FROM app_state_events "

// BySession returns every record of one process session in append order.
func (s *SQLiteStore) BySession(ctx context.Context, sessionID string) ([]Record, error) {
	return s.query(ctx, selectRecords+"WHERE session_id = ? ORDER BY id", sessionID)
}

// Range returns records stamped between start and end, both inclusive at
// millisecond precision.
func (s *SQLiteStore) Range(ctx context.Context, start, end time.Time) ([]Record, error) {
	return s.query(ctx, selectRecords+"WHERE timestamp BETWEEN ? AND ? ORDER BY id", start.UnixMilli(), end.UnixMilli())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(ErrEventQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

// CountByAction counts a session's records per action.
func (s *SQLiteStore) CountByAction(ctx context.Context, sessionID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT action, COUNT(*) FROM app_state_events WHERE session_id = ? GROUP BY action",
		sessionID,
	)
	if err != nil {
		return nil, wrap(ErrEventQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	counts := map[string]int{}
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, wrap(ErrEventScanFailed, err)
		}
		counts[action] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrEventScanFailed, err)
	}
	return counts, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			r    Record
			ms   int64
			meta []byte
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Action, &r.Value, &ms, &meta); err != nil {
			return nil, wrap(ErrEventScanFailed, err)
		}
		r.Timestamp = time.UnixMilli(ms)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, wrap(ErrEventScanFailed, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrEventScanFailed, err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
