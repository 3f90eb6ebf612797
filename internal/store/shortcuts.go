package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cdir/internal/apperr"
	"github.com/starford/cdir/internal/pathutil"
)

// AddShortcut creates the shortcut or replaces the path and description of
// an existing one with the same name. Names are case-sensitive. An empty
// description is stored as NULL.
func (db *DB) AddShortcut(name, path, description string) error {
	if err := validateShortcut(name, path); err != nil {
		return err
	}
	p, err := pathutil.Clean(path)
	if err != nil {
		return err
	}

	var desc sql.NullString
	if description != "" {
		desc = sql.NullString{String: description, Valid: true}
	}

	_, err = db.conn.Exec(`
		INSERT INTO shortcuts (name, path, description) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			path        = excluded.path,
			description = excluded.description
	`, name, p, desc)
	if err != nil {
		return ioErr("upsert shortcut", err)
	}
	return nil
}

func validateShortcut(name, path string) error {
	err := validation.Errors{
		"name": validation.Validate(strings.TrimSpace(name), validation.Required, validation.Length(1, 255)),
		"path": validation.Validate(strings.TrimSpace(path), validation.Required),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: shortcut: %w", apperr.ErrValidation, err)
	}
	return nil
}

// DeleteShortcut removes the shortcut called name.
func (db *DB) DeleteShortcut(name string) error {
	res, err := db.conn.Exec(`DELETE FROM shortcuts WHERE name = ?`, name)
	if err != nil {
		return ioErr("delete shortcut", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioErr("delete shortcut", err)
	}
	if n == 0 {
		return fmt.Errorf("shortcut %q: %w", name, apperr.ErrNotFound)
	}
	return nil
}

// GetShortcut looks a shortcut up by its exact name.
func (db *DB) GetShortcut(name string) (*Shortcut, error) {
	var (
		s    Shortcut
		desc sql.NullString
	)
	err := db.conn.QueryRow(`SELECT id, name, path, description FROM shortcuts WHERE name = ?`, name).
		Scan(&s.ID, &s.Name, &s.Path, &desc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shortcut %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("get shortcut", err)
	}
	s.Description = desc.String
	return &s, nil
}

// ListShortcuts returns every shortcut ordered by name.
func (db *DB) ListShortcuts() ([]Shortcut, error) {
	rows, err := db.conn.Query(`SELECT id, name, path, description FROM shortcuts ORDER BY name ASC`)
	if err != nil {
		return nil, ioErr("list shortcuts", err)
	}
	defer rows.Close()

	var out []Shortcut
	for rows.Next() {
		var (
			s    Shortcut
			desc sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Path, &desc); err != nil {
			return nil, ioErr("scan shortcut", err)
		}
		s.Description = desc.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("iterate shortcuts", err)
	}
	return out, nil
}
