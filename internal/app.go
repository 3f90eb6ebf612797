// Package internal provides the application bootstrap and one method per
// command.
package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/natefinch/atomic"

	"github.com/starford/cdir/internal/expimp"
	"github.com/starford/cdir/internal/mcpserver"
	"github.com/starford/cdir/internal/pathutil"
	"github.com/starford/cdir/internal/pretty"
	"github.com/starford/cdir/internal/prune"
	"github.com/starford/cdir/internal/store"
	"github.com/starford/cdir/internal/suggest"
	"github.com/starford/cdir/internal/theme"
	"github.com/starford/cdir/internal/ui"
)

// App holds the open store and the settings shared by all commands.
type App struct {
	config  *Config
	store   *store.DB
	logger  *slog.Logger
	logFile *os.File
	// prevLogger is the default logger to restore once logFile is closed.
	prevLogger *slog.Logger
	out     io.Writer
	term    io.Writer
	now     func() time.Time
	workDir string
	home    string
}

// New opens the database and builds the logger.
func New(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	if app.out == nil {
		app.out = os.Stdout
	}
	if app.term == nil {
		app.term = os.Stderr
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working dir: %w", err)
		}
		app.workDir = wd
	}
	if app.home == "" {
		app.home, _ = os.UserHomeDir()
	}
	if app.logger == nil {
		app.logger = app.openLogger()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, app.fail(fmt.Errorf("create data dir: %w", err))
	}
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, app.fail(fmt.Errorf("init store: %w", err))
	}
	app.store = db

	app.logger.Debug("Configuration loaded",
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))
	return app, nil
}

// openLogger writes JSON logs to the configured file, or stderr when the
// file cannot be opened.
func (a *App) openLogger() *slog.Logger {
	var w io.Writer = os.Stderr
	var openErr error
	if p := a.config.App.LogFile; p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			openErr = err
		} else if f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			openErr = err
		} else {
			a.logFile = f
			w = f
		}
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	a.prevLogger = slog.Default()
	slog.SetDefault(logger)
	if openErr != nil {
		logger.Warn("log file unavailable", slog.String("error", openErr.Error()))
	}
	return logger
}

// fail logs a startup error while the log file is still open, then
// releases what New acquired.
func (a *App) fail(err error) error {
	a.logger.Error("startup failed", slog.String("error", err.Error()))
	a.Close()
	return err
}

// Close releases the store and the log file. The default logger is reset
// to the one in place before New so later records are not lost.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logFile != nil {
		slog.SetDefault(a.prevLogger)
		a.logFile.Close()
		a.logFile = nil
	}
	return err
}

// Navigate runs the interactive navigator. The chosen path is printed, or
// written atomically to file when it is not empty. Nothing is written when
// the user quits.
func (a *App) Navigate(file string) error {
	nav, err := a.config.UI.Navigator()
	if err != nil {
		return err
	}
	opts := []ui.Option{
		ui.WithConfig(nav),
		ui.WithHome(a.home),
		ui.WithLogger(a.logger),
		ui.WithStyles(theme.NewStyles(a.config.Theme, lipgloss.NewRenderer(a.term))),
	}
	if a.config.Suggestions.Enabled {
		opts = append(opts, ui.WithSuggester(a.suggestions))
	}

	res, err := ui.Run(a.store, a.term, opts...)
	if err != nil {
		return err
	}
	if !res.Selected {
		a.logger.Debug("navigator closed without selection")
		return nil
	}
	if file == "" {
		_, err := fmt.Fprintln(a.out, res.Path)
		return err
	}
	if err := atomic.WriteFile(file, bytes.NewBufferString(res.Path)); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

func (a *App) suggestions() ([]suggest.Suggestion, error) {
	cfg := a.config.Suggestions.Ranking()
	now := a.now()
	var since time.Time
	if cfg.Lookback > 0 {
		since = now.Add(-cfg.Lookback)
	}
	history, err := a.store.VisitHistory(since)
	if err != nil {
		return nil, err
	}
	return suggest.Suggest(history, a.workDir, now, cfg), nil
}

// AddPath records a visit to p, resolved against the working directory.
func (a *App) AddPath(p string) error {
	abs, err := pathutil.Normalize(p, a.workDir)
	if err != nil {
		return err
	}
	return a.store.RecordVisit(abs, a.now())
}

// ImportPaths loads a YAML paths file.
func (a *App) ImportPaths(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	rep, err := expimp.ImportPaths(f, a.store, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("paths imported",
		slog.String("file", file),
		slog.Int("imported", rep.Imported),
		slog.Int("skipped", rep.Skipped))
	_, err = fmt.Fprintf(a.out, "imported %d paths, skipped %d\n", rep.Imported, rep.Skipped)
	return err
}

// ExportPaths writes the visit log as YAML to file, or to the output when
// file is empty.
func (a *App) ExportPaths(file string) error {
	return a.export(file, func(w io.Writer) (int, error) {
		return expimp.ExportPaths(w, a.store)
	})
}

// AddShortcut creates or replaces a shortcut. The path is resolved against
// the working directory.
func (a *App) AddShortcut(name, path, description string) error {
	abs, err := pathutil.Normalize(path, a.workDir)
	if err != nil {
		return err
	}
	return a.store.AddShortcut(name, abs, description)
}

// DeleteShortcut removes the named shortcut.
func (a *App) DeleteShortcut(name string) error {
	return a.store.DeleteShortcut(name)
}

// PrintShortcut prints the target of the named shortcut.
func (a *App) PrintShortcut(name string) error {
	s, err := a.store.GetShortcut(name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, s.Path)
	return err
}

// ImportShortcuts loads a YAML shortcuts file.
func (a *App) ImportShortcuts(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	rep, err := expimp.ImportShortcuts(f, a.store, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("shortcuts imported",
		slog.String("file", file),
		slog.Int("imported", rep.Imported),
		slog.Int("skipped", rep.Skipped))
	_, err = fmt.Fprintf(a.out, "imported %d shortcuts, skipped %d\n", rep.Imported, rep.Skipped)
	return err
}

// ExportShortcuts writes all shortcuts as YAML to file, or to the output
// when file is empty.
func (a *App) ExportShortcuts(file string) error {
	return a.export(file, func(w io.Writer) (int, error) {
		return expimp.ExportShortcuts(w, a.store)
	})
}

func (a *App) export(file string, write func(io.Writer) (int, error)) error {
	if file == "" {
		_, err := write(a.out)
		return err
	}
	var buf bytes.Buffer
	n, err := write(&buf)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(file, &buf); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	a.logger.Info("exported", slog.String("file", file), slog.Int("entries", n))
	return nil
}

// Lasts prints the most recent paths, newest first.
func (a *App) Lasts(limit int) error {
	recent, err := a.store.ListRecentPaths(limit)
	if err != nil {
		return err
	}
	for _, v := range recent {
		if _, err := fmt.Fprintf(a.out, "%s  %s\n", v.Time.Format(a.config.UI.DateFormat), v.Path); err != nil {
			return err
		}
	}
	return nil
}

// PrettyPrint prints the compact form of path. With styled set the output
// carries the theme colors even when stdout is not a terminal. A zero
// maxWidth falls back to the configured budget.
func (a *App) PrettyPrint(path string, styled bool, maxWidth int) error {
	abs, err := pathutil.Normalize(path, a.workDir)
	if err != nil {
		return err
	}
	shortcuts, err := a.store.ListShortcuts()
	if err != nil {
		return err
	}
	if maxWidth == 0 {
		maxWidth = a.config.UI.MaxWidth
	}
	r := pretty.NewResolver(shortcuts, a.home).Render(abs, maxWidth)

	text := r.String()
	if styled {
		styles := theme.NewStyles(a.config.Theme, theme.ForcedRenderer(a.out))
		text = styles.RenderPath(r)
	}
	_, err = fmt.Fprintln(a.out, text)
	return err
}

// Prune deletes history rows whose directory no longer exists and prints
// them.
func (a *App) Prune(ctx context.Context, dryRun bool) error {
	gone, err := prune.Missing(ctx, a.store, prune.Options{
		DryRun: dryRun,
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	for _, p := range gone {
		if _, err := fmt.Fprintln(a.out, p); err != nil {
			return err
		}
	}
	return nil
}

// ServeMCP serves the read-only MCP tools on stdio until stdin closes.
func (a *App) ServeMCP() error {
	srv := mcpserver.New(a.store,
		mcpserver.WithHome(a.home),
		mcpserver.WithSuggestConfig(a.config.Suggestions.Ranking()),
		mcpserver.WithClock(a.now),
	)
	a.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
