package store

import "time"

// Visit is one recorded directory visit. Rows of the latest-visit cache use
// the same shape; their ID is the id of the visit that last advanced them.
type Visit struct {
	ID   int64
	Path string
	Time time.Time
}

// Shortcut is a named alias for a directory.
type Shortcut struct {
	ID          int64
	Name        string
	Path        string
	Description string
}

// Store defines the persistence operations used by the rest of cdir.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Store interface {
	RecordVisit(path string, at time.Time) error
	ListRecentPaths(limit int) ([]Visit, error)
	DeleteVisit(path string) error
	VisitHistory(since time.Time) ([]Visit, error)
	ListShortcuts() ([]Shortcut, error)
	AddShortcut(name, path, description string) error
	DeleteShortcut(name string) error
	GetShortcut(name string) (*Shortcut, error)
	SchemaVersion() (int, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
