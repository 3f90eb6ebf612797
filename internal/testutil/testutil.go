// Package testutil provides shared test helpers for setting up databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/cdir/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "cdir-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Visits records each path once, one second apart starting at base, so the
// last path is the most recent.
func Visits(t *testing.T, db *store.DB, base time.Time, paths ...string) {
	t.Helper()
	for i, p := range paths {
		if err := db.RecordVisit(p, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordVisit(%q): %v", p, err)
		}
	}
}
