package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const historySchema = `
CREATE TABLE IF NOT EXISTS session_events (
	id          INTEGER PRIMARY KEY,
	kind        TEXT    NOT NULL,
	timestamp   TEXT    NOT NULL,
	scratch_dir TEXT    NOT NULL DEFAULT '',
	program     TEXT    NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL DEFAULT 0,
	message     TEXT    NOT NULL DEFAULT '',
	level       TEXT    NOT NULL DEFAULT 'info'
);

CREATE INDEX IF NOT EXISTS idx_session_ts ON session_events(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_session_program ON session_events(program, timestamp DESC);
`

const maxQueryLimit = 500

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// session_events schema, and returns a ready-to-use store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db for history: %w", err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run history schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Emit inserts a history event into the database. If the event's
// Timestamp is zero, it is set to time.Now(). Insert failures are
// dropped: history must never break a session.
func (s *SQLiteStore) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	const q = `
		INSERT INTO session_events
			(kind, timestamp, scratch_dir, program, exit_code, message, level)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	level := e.Level
	if level == "" {
		level = "info"
	}

	_, _ = s.db.Exec(q,
		string(e.Kind),
		historyFormatTime(e.Timestamp),
		e.ScratchDir,
		e.Program,
		e.ExitCode,
		e.Message,
		level,
	)
}

// Query returns events matching the filter, ordered newest-first.
// Limit is capped at 500.
func (s *SQLiteStore) Query(f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	var conditions []string
	var args []any

	if f.Program != "" {
		conditions = append(conditions, "program = ?")
		args = append(args, f.Program)
	}
	if len(f.Kinds) > 0 {
		placeholders := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !f.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, historyFormatTime(f.After))
	}
	if !f.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, historyFormatTime(f.Before))
	}

	q := `
		SELECT id, kind, timestamp, scratch_dir, program, exit_code, message, level
		FROM session_events
	`
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT %d", limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(
			&e.ID,
			(*string)(&e.Kind),
			&ts,
			&e.ScratchDir,
			&e.Program,
			&e.ExitCode,
			&e.Message,
			&e.Level,
		); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		e.Timestamp = historyParseTime(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history events: %w", err)
	}
	return events, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// historyFormatTime formats a time.Time as RFC3339Nano for storage.
// Zero time returns empty string.
func historyFormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// historyParseTime parses an RFC3339Nano string.
// Returns zero time on empty or invalid input.
func historyParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
