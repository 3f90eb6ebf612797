package internal

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/cdir/internal/apperr"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, dir string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "data", "cdir.db")
	cfg.UI.DateFormat = "2006-01-02 15:04:05"

	var out bytes.Buffer
	clock := testNow
	app, err := New(
		WithConfig(cfg),
		WithOutput(&out),
		WithWorkDir("/work"),
		WithHome("/home/u"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app, &out
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestAddPathResolvesRelative(t *testing.T) {
	app, out := newTestApp(t, t.TempDir())

	if err := app.AddPath("src/../proj"); err != nil {
		t.Fatal(err)
	}
	if err := app.AddPath("/tmp/"); err != nil {
		t.Fatal(err)
	}
	if err := app.Lasts(0); err != nil {
		t.Fatal(err)
	}

	stamp := func(sec int) string {
		return testNow.Add(time.Duration(sec) * time.Second).Local().Format("2006-01-02 15:04:05")
	}
	want := stamp(2) + "  /tmp\n" +
		stamp(1) + "  /work/proj\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("lasts mismatch (-want +got):\n%s", diff)
	}
}

func TestShortcutCommands(t *testing.T) {
	app, out := newTestApp(t, t.TempDir())

	if err := app.AddShortcut("proj", "proj", "my project"); err != nil {
		t.Fatal(err)
	}
	if err := app.PrintShortcut("proj"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "/work/proj\n" {
		t.Errorf("PrintShortcut = %q", got)
	}

	if err := app.DeleteShortcut("proj"); err != nil {
		t.Fatal(err)
	}
	if err := app.DeleteShortcut("proj"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: want ErrNotFound, got %v", err)
	}
	if err := app.PrintShortcut("proj"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("print deleted: want ErrNotFound, got %v", err)
	}
}

func TestPrettyPrint(t *testing.T) {
	app, out := newTestApp(t, t.TempDir())
	if err := app.AddShortcut("w", "/work", ""); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{"/work/a/b", "/home/u/docs", "/srv"} {
		if err := app.PrettyPrint(p, false, 0); err != nil {
			t.Fatal(err)
		}
	}
	want := "[w]/a/b\n~/docs\n/srv\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("pretty mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyPrintStyled(t *testing.T) {
	app, out := newTestApp(t, t.TempDir())
	if err := app.PrettyPrint("/home/u/docs", true, 0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "\x1b[") {
		t.Errorf("styled output has no escape sequences: %q", out.String())
	}
}

func TestExportImportPathsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src, _ := newTestApp(t, filepath.Join(dir, "src"))
	for _, p := range []string{"/a", "/b", "/a"} {
		if err := src.AddPath(p); err != nil {
			t.Fatal(err)
		}
	}
	file := filepath.Join(dir, "paths.yaml")
	if err := src.ExportPaths(file); err != nil {
		t.Fatal(err)
	}

	dst, out := newTestApp(t, filepath.Join(dir, "dst"))
	if err := dst.ImportPaths(file); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "imported 3 paths, skipped 0\n" {
		t.Errorf("import report = %q", got)
	}

	recent, err := dst.store.ListRecentPaths(0)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, v := range recent {
		got = append(got, v.Path)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, got); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}
}

func TestExportShortcutsToOutput(t *testing.T) {
	app, out := newTestApp(t, t.TempDir())
	if err := app.AddShortcut("b", "/b", "bee"); err != nil {
		t.Fatal(err)
	}
	if err := app.AddShortcut("a", "/a", ""); err != nil {
		t.Fatal(err)
	}
	if err := app.ExportShortcuts(""); err != nil {
		t.Fatal(err)
	}
	want := "- name: a\n  path: /a\n- name: b\n  path: /b\n  description: bee\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestPruneDryRun(t *testing.T) {
	dir := t.TempDir()
	app, out := newTestApp(t, dir)

	kept := filepath.Join(dir, "kept")
	if err := os.Mkdir(kept, 0o755); err != nil {
		t.Fatal(err)
	}
	gone := filepath.Join(dir, "gone")
	for _, p := range []string{kept, gone} {
		if err := app.AddPath(p); err != nil {
			t.Fatal(err)
		}
	}

	if err := app.Prune(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != gone+"\n" {
		t.Errorf("prune output = %q", got)
	}
	recent, err := app.store.ListRecentPaths(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("dry run deleted rows: %d left", len(recent))
	}
}

func TestSuggestionsUseWorkDir(t *testing.T) {
	app, _ := newTestApp(t, t.TempDir())
	for _, p := range []string{"/elsewhere", "/work", "/work/sub"} {
		if err := app.AddPath(p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := app.suggestions()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Path != "/work/sub" {
		t.Errorf("suggestions = %+v", got)
	}
}

// futureDB creates a database stamped with a schema version this build does
// not know.
func futureDB(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	conn, err := sql.Open("sqlite3", p)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Exec(`CREATE TABLE schema_version (version INTEGER NOT NULL);
		INSERT INTO schema_version (version) VALUES (99)`); err != nil {
		t.Fatal(err)
	}
}

func TestNewLogsStartupFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "cdir.db")
	futureDB(t, cfg.SQLite.Path)

	var logs bytes.Buffer
	_, err := New(
		WithConfig(cfg),
		WithWorkDir("/work"),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)
	if !errors.Is(err, apperr.ErrSchemaMigration) {
		t.Fatalf("err = %v, want ErrSchemaMigration", err)
	}
	if !strings.Contains(logs.String(), "startup failed") || !strings.Contains(logs.String(), "version 99") {
		t.Errorf("startup failure not logged: %q", logs.String())
	}
}

func TestCloseRestoresDefaultLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "cdir.db")
	cfg.App.LogFile = filepath.Join(dir, "cdir.log")

	app, err := New(WithConfig(cfg), WithWorkDir("/work"))
	if err != nil {
		t.Fatal(err)
	}
	if slog.Default() == prev {
		t.Fatal("log file logger was not installed")
	}
	app.Close()
	if slog.Default() != prev {
		t.Error("Close left the file logger as default")
	}
}
