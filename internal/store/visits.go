package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/cdir/internal/apperr"
	"github.com/starford/cdir/internal/pathutil"
)

// RecordVisit appends a visit to the log and advances the latest-visit row
// of path within one transaction. A visit older than the cached one is still
// logged but leaves the cache untouched.
func (db *DB) RecordVisit(path string, at time.Time) error {
	p, err := pathutil.Clean(path)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return ioErr("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`INSERT INTO visits (path, date) VALUES (?, ?)`, p, at.Unix())
	if err != nil {
		return ioErr("insert visit", err)
	}
	visitID, err := res.LastInsertId()
	if err != nil {
		return ioErr("visit id", err)
	}

	_, err = tx.Exec(`
		INSERT INTO paths (path, date, visit_id) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			date     = excluded.date,
			visit_id = excluded.visit_id
		WHERE excluded.date >= paths.date
	`, p, at.Unix(), visitID)
	if err != nil {
		return ioErr("upsert latest visit", err)
	}

	if err := tx.Commit(); err != nil {
		return ioErr("commit", err)
	}
	return nil
}

// ListRecentPaths returns one row per visited path, most recent first. Rows
// sharing a timestamp are ordered by the visit that wrote them, newest first.
// A limit <= 0 returns every row.
func (db *DB) ListRecentPaths(limit int) ([]Visit, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT visit_id, path, date
		FROM paths
		ORDER BY date DESC, visit_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, ioErr("list recent paths", err)
	}
	return scanVisits(rows)
}

// DeleteVisit removes the latest-visit row of path together with every
// logged visit of it, so the path no longer feeds suggestions either.
func (db *DB) DeleteVisit(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return ioErr("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM paths WHERE path = ?`, path)
	if err != nil {
		return ioErr("delete latest visit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioErr("delete latest visit", err)
	}
	if n == 0 {
		return fmt.Errorf("path %q: %w", path, apperr.ErrNotFound)
	}
	if _, err := tx.Exec(`DELETE FROM visits WHERE path = ?`, path); err != nil {
		return ioErr("purge visits", err)
	}

	if err := tx.Commit(); err != nil {
		return ioErr("commit", err)
	}
	return nil
}

// VisitHistory returns logged visits at or after since, in insertion order.
// A zero since returns the whole log.
func (db *DB) VisitHistory(since time.Time) ([]Visit, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if since.IsZero() {
		rows, err = db.conn.Query(`SELECT id, path, date FROM visits ORDER BY id`)
	} else {
		rows, err = db.conn.Query(`SELECT id, path, date FROM visits WHERE date >= ? ORDER BY id`, since.Unix())
	}
	if err != nil {
		return nil, ioErr("visit history", err)
	}
	return scanVisits(rows)
}

func scanVisits(rows *sql.Rows) ([]Visit, error) {
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var (
			v    Visit
			date int64
		)
		if err := rows.Scan(&v.ID, &v.Path, &date); err != nil {
			return nil, ioErr("scan visit", err)
		}
		v.Time = time.Unix(date, 0)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("iterate visits", err)
	}
	return out, nil
}
