// Package history records scratch-space sessions in a local SQLite
// database so `playpen history` can answer what ran, where, and how it
// ended. Recording is best-effort convenience; the core space lifecycle
// never depends on it.
package history

import "time"

// EventKind identifies the type of history event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Session lifecycle events.
const (
	EventEntered EventKind = "entered"
	EventExited  EventKind = "exited"
	EventDenied  EventKind = "denied" // fail-fast entry refused: space already active
	EventError   EventKind = "error"
)

// Event is a single history entry.
type Event struct {
	ID         int64
	Kind       EventKind
	Timestamp  time.Time
	ScratchDir string
	Program    string
	ExitCode   int
	Message    string
	Level      string // info, warn, error
}

// QueryFilter specifies criteria for querying history events.
type QueryFilter struct {
	Program string
	Kinds   []EventKind
	Limit   int
	Before  time.Time
	After   time.Time
}

// Store is the interface for recording and querying session history.
type Store interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Close() error
}

// nopStore is a no-op Store used when history recording is disabled.
type nopStore struct{}

func (nopStore) Emit(Event) {}

func (nopStore) Query(QueryFilter) ([]Event, error) { return nil, nil }

func (nopStore) Close() error { return nil }

// NewNopStore returns a Store that records nothing and queries empty.
func NewNopStore() Store {
	return nopStore{}
}
