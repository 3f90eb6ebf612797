// Package expimp imports and exports visits and shortcuts as YAML.
//
// Paths files are lists of {date, path} where date is a Unix timestamp in
// seconds written as a string. Shortcuts files are lists of
// {name, path, description}.
package expimp

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/cdir/internal/store"
)

// PathEntry is one visit in a paths file.
type PathEntry struct {
	Date string `yaml:"date"`
	Path string `yaml:"path"`
}

// ShortcutEntry is one shortcut in a shortcuts file.
type ShortcutEntry struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Description string `yaml:"description,omitempty"`
}

// Report counts the entries of an import.
type Report struct {
	Imported int
	Skipped  int
}

// Store is the subset of the store used by imports and exports.
type Store interface {
	RecordVisit(path string, at time.Time) error
	VisitHistory(since time.Time) ([]store.Visit, error)
	AddShortcut(name, path, description string) error
	ListShortcuts() ([]store.Shortcut, error)
}

// ImportPaths records every entry of a paths file as a visit. Entries with
// an unparsable date or a path the store rejects are skipped and logged.
func ImportPaths(r io.Reader, st Store, logger *slog.Logger) (Report, error) {
	var entries []PathEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return Report{}, fmt.Errorf("expimp: decode paths: %w", err)
	}

	var rep Report
	for i, e := range entries {
		sec, err := strconv.ParseInt(strings.TrimSpace(e.Date), 10, 64)
		if err != nil {
			logger.Warn("skipping path entry", slog.Int("entry", i), slog.String("date", e.Date), slog.String("error", err.Error()))
			rep.Skipped++
			continue
		}
		if err := st.RecordVisit(e.Path, time.Unix(sec, 0)); err != nil {
			logger.Warn("skipping path entry", slog.Int("entry", i), slog.String("path", e.Path), slog.String("error", err.Error()))
			rep.Skipped++
			continue
		}
		rep.Imported++
	}
	return rep, nil
}

// ExportPaths writes the whole visit log, oldest first, so that importing
// the file again reproduces the recency order.
func ExportPaths(w io.Writer, st Store) (int, error) {
	visits, err := st.VisitHistory(time.Time{})
	if err != nil {
		return 0, err
	}
	entries := make([]PathEntry, 0, len(visits))
	for _, v := range visits {
		entries = append(entries, PathEntry{Date: strconv.FormatInt(v.Time.Unix(), 10), Path: v.Path})
	}
	return len(entries), encode(w, entries)
}

// ImportShortcuts adds every entry of a shortcuts file, replacing existing
// shortcuts of the same name. Invalid entries are skipped and logged.
func ImportShortcuts(r io.Reader, st Store, logger *slog.Logger) (Report, error) {
	var entries []ShortcutEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return Report{}, fmt.Errorf("expimp: decode shortcuts: %w", err)
	}

	var rep Report
	for i, e := range entries {
		if err := st.AddShortcut(e.Name, e.Path, e.Description); err != nil {
			logger.Warn("skipping shortcut entry", slog.Int("entry", i), slog.String("name", e.Name), slog.String("error", err.Error()))
			rep.Skipped++
			continue
		}
		rep.Imported++
	}
	return rep, nil
}

// ExportShortcuts writes every shortcut ordered by name.
func ExportShortcuts(w io.Writer, st Store) (int, error) {
	list, err := st.ListShortcuts()
	if err != nil {
		return 0, err
	}
	entries := make([]ShortcutEntry, 0, len(list))
	for _, s := range list {
		entries = append(entries, ShortcutEntry{Name: s.Name, Path: s.Path, Description: s.Description})
	}
	return len(entries), encode(w, entries)
}

func encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("expimp: encode: %w", err)
	}
	return enc.Close()
}
