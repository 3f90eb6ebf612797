package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/cdir/internal/apperr"
)

// migration brings the schema from (version-1) to version. Steps must be
// safe to re-run against a database that already has their changes.
type migration func(tx *sql.Tx) error

// schemaVersion is the current schema version. Increment when adding migrations.
const schemaVersion = 3

var migrations = map[int]migration{
	1: migrateV1,
	2: migrateV2,
	3: migrateV3,
}

func migrate(conn *sql.DB, steps map[int]migration, target int) error {
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return ioErr("create schema_version", err)
	}

	current, err := storedVersion(conn)
	if err != nil {
		return err
	}
	if current > target {
		return fmt.Errorf("%w: database is at version %d, this build supports up to %d",
			apperr.ErrSchemaMigration, current, target)
	}

	for v := current + 1; v <= target; v++ {
		step, ok := steps[v]
		if !ok {
			return fmt.Errorf("%w: no migration to version %d", apperr.ErrSchemaMigration, v)
		}
		if err := applyStep(conn, v, step); err != nil {
			return fmt.Errorf("%w: version %d: %w", apperr.ErrSchemaMigration, v, err)
		}
	}
	return nil
}

// storedVersion reads the version row. Databases created before the
// version table existed already carry the version 1 tables.
func storedVersion(conn *sql.DB) (int, error) {
	var v int
	err := conn.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, ioErr("read schema version", err)
	}

	legacy, err := tableExists(conn, "paths")
	if err != nil {
		return 0, err
	}
	if !legacy {
		return 0, nil
	}
	if _, err := conn.Exec(`INSERT INTO schema_version (version) VALUES (1)`); err != nil {
		return 0, ioErr("record legacy version", err)
	}
	return 1, nil
}

func applyStep(conn *sql.DB, version int, step migration) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	// Another process may have applied the step since the version was read.
	var stored int
	err = tx.QueryRow(`SELECT coalesce(max(version), 0) FROM schema_version`).Scan(&stored)
	if err != nil {
		return err
	}
	if stored >= version {
		return tx.Commit()
	}

	if err := step(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return err
	}
	return tx.Commit()
}

func tableExists(conn *sql.DB, name string) (bool, error) {
	var n int
	err := conn.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, ioErr("inspect tables", err)
	}
	return n > 0, nil
}

func hasColumn(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func migrateV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS paths (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			date INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS paths_date ON paths (date);

		CREATE TABLE IF NOT EXISTS shortcuts (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS shortcuts_name ON shortcuts (name);
	`)
	return err
}

func migrateV2(tx *sql.Tx) error {
	ok, err := hasColumn(tx, "shortcuts", "description")
	if err != nil || ok {
		return err
	}
	_, err = tx.Exec(`ALTER TABLE shortcuts ADD COLUMN description TEXT`)
	return err
}

// migrateV3 splits the append-only visit log out of the latest-visit table
// and makes paths and shortcut names unique.
func migrateV3(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			date INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS visits_path ON visits (path);
		CREATE INDEX IF NOT EXISTS visits_date ON visits (date);

		INSERT INTO visits (path, date)
			SELECT path, date FROM paths
			WHERE NOT EXISTS (SELECT 1 FROM visits)
			ORDER BY date, id;

		DELETE FROM paths WHERE EXISTS (
			SELECT 1 FROM paths o
			WHERE o.path = paths.path
			  AND (o.date > paths.date OR (o.date = paths.date AND o.id > paths.id))
		);

		DELETE FROM shortcuts WHERE id NOT IN (SELECT MAX(id) FROM shortcuts GROUP BY name);
	`); err != nil {
		return err
	}

	ok, err := hasColumn(tx, "paths", "visit_id")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := tx.Exec(`ALTER TABLE paths ADD COLUMN visit_id INTEGER NOT NULL DEFAULT 0`); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		UPDATE paths SET visit_id = COALESCE(
			(SELECT MAX(v.id) FROM visits v WHERE v.path = paths.path AND v.date = paths.date), 0)
		WHERE visit_id = 0;

		CREATE UNIQUE INDEX IF NOT EXISTS paths_path ON paths (path);
		CREATE INDEX IF NOT EXISTS paths_recent ON paths (date DESC, visit_id DESC);
		CREATE UNIQUE INDEX IF NOT EXISTS shortcuts_name_unique ON shortcuts (name);
	`)
	return err
}
