// Package store provides the SQLite-backed visit log, latest-visit cache and
// shortcut registry.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/cdir/internal/apperr"
)

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and migrates it to the
// current schema version.
func Open(dsn string) (*DB, error) {
	return open(dsn, migrations, schemaVersion)
}

func open(dsn string, steps map[int]migration, target int) (*DB, error) {
	conn, err := sql.Open("sqlite3", withParams(dsn))
	if err != nil {
		return nil, ioErr("open db", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, ioErr("ping", err)
	}
	if err := migrate(conn, steps, target); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// withParams appends the connection parameters shared by every cdir process.
// _txlock=immediate makes BEGIN take the write lock.
func withParams(dsn string) string {
	params := "_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SchemaVersion returns the version recorded in the schema_version table.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.conn.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, ioErr("schema version", err)
	}
	return v, nil
}

func ioErr(op string, err error) error {
	return fmt.Errorf("store: %s: %w: %w", op, apperr.ErrStorageIO, err)
}
