// Package ui implements the interactive navigator: a bubbletea program that
// lists recent directories and shortcuts, filters them as the user types
// and returns the chosen path.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/cdir/internal/apperr"
	"github.com/starford/cdir/internal/pretty"
	"github.com/starford/cdir/internal/search"
	"github.com/starford/cdir/internal/store"
	"github.com/starford/cdir/internal/suggest"
	"github.com/starford/cdir/internal/theme"
)

// Store is the subset of the store the navigator reads and mutates.
type Store interface {
	ListRecentPaths(limit int) ([]store.Visit, error)
	ListShortcuts() ([]store.Shortcut, error)
	DeleteVisit(path string) error
	DeleteShortcut(name string) error
	AddShortcut(name, path, description string) error
}

// Suggester produces smart suggestions. A nil Suggester disables them and
// is never called.
type Suggester func() ([]suggest.Suggestion, error)

// Config holds the session parameters.
type Config struct {
	SearchMode       search.Mode
	DateFormat       string
	PageSize         int
	LargeStep        int
	MaxWidth         int
	IncludeShortcuts bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		SearchMode:       search.Exact,
		DateFormat:       "02-Jan-06 15:04:05",
		PageSize:         20,
		LargeStep:        10,
		IncludeShortcuts: true,
	}
}

// chrome is the number of terminal lines not used by the list.
const chrome = 4

// row is one displayed line of either view.
type row struct {
	path      string
	date      time.Time
	suggested bool
	shortcut  *store.Shortcut
}

// Model is the navigator state.
type Model struct {
	store     Store
	suggester Suggester
	resolver  *pretty.Resolver
	home      string
	styles    theme.Styles
	keys      keyMap
	help      help.Model
	cfg       Config
	logger    *slog.Logger

	view       View
	helpReturn View
	mode       Mode
	filter     string
	edit       string
	editTarget string
	editReturn Mode
	searchMode search.Mode
	fullPath   bool
	selection  int
	offset     int

	recent      []store.Visit
	suggestions []suggest.Suggestion
	shortcuts   []store.Shortcut
	rows        []row

	width  int
	height int
	status string
	result Result
	done   bool
}

// Option configures a Model.
type Option func(*Model)

// WithConfig sets the session configuration.
func WithConfig(cfg Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

// WithSuggester enables smart suggestions.
func WithSuggester(s Suggester) Option {
	return func(m *Model) { m.suggester = s }
}

// WithStyles sets the styles used for rendering.
func WithStyles(s theme.Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithHome sets the directory rendered as "~".
func WithHome(home string) Option {
	return func(m *Model) { m.home = home }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// New loads the session data from st and returns the initial state.
func New(st Store, opts ...Option) (Model, error) {
	m := Model{
		store:  st,
		cfg:    DefaultConfig(),
		styles: theme.NewStyles(theme.Default(), nil),
		keys:   keys,
		help:   help.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.cfg.PageSize <= 0 {
		m.cfg.PageSize = DefaultConfig().PageSize
	}
	if m.cfg.LargeStep <= 0 {
		m.cfg.LargeStep = DefaultConfig().LargeStep
	}
	m.searchMode = m.cfg.SearchMode

	var err error
	if m.recent, err = st.ListRecentPaths(0); err != nil {
		return Model{}, fmt.Errorf("load recent paths: %w", err)
	}
	if m.shortcuts, err = st.ListShortcuts(); err != nil {
		return Model{}, fmt.Errorf("load shortcuts: %w", err)
	}
	m.resolver = pretty.NewResolver(m.shortcuts, m.home)

	if m.suggester != nil {
		s, err := m.suggester()
		if err != nil {
			m.logger.Warn("smart suggestions unavailable", slog.String("error", err.Error()))
		}
		m.suggestions = s
	}

	m.refresh()
	return m, nil
}

// Result returns the session outcome.
func (m Model) Result() Result {
	return m.result
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clamp()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// pageSize is the number of list rows that fit on screen.
func (m Model) pageSize() int {
	if m.height > 0 {
		return max(m.height-chrome, 1)
	}
	return m.cfg.PageSize
}

// refresh rebuilds the displayed rows from the loaded data, the active
// view and the filter buffer, and resets the selection to the top.
func (m *Model) refresh() {
	m.rows = m.buildRows()
	m.selection = 0
	m.offset = 0
}

func (m *Model) buildRows() []row {
	if m.view == ShortcutsView {
		list := m.shortcuts
		if m.mode == Filtering {
			list = search.Filter(m.filter, m.searchMode, list, shortcutFields)
		}
		rows := make([]row, 0, len(list))
		for i := range list {
			s := list[i]
			rows = append(rows, row{path: s.Path, shortcut: &s})
		}
		return rows
	}

	if m.mode == Filtering {
		list := search.Filter(m.filter, m.searchMode, m.recent, m.visitFields)
		rows := make([]row, 0, len(list))
		for _, v := range list {
			rows = append(rows, row{path: v.Path, date: v.Time})
		}
		return rows
	}

	rows := make([]row, 0, len(m.suggestions)+len(m.recent))
	seen := make(map[string]bool, len(m.suggestions))
	for _, s := range m.suggestions {
		seen[s.Path] = true
		rows = append(rows, row{path: s.Path, date: s.LastVisit, suggested: true})
	}
	for _, v := range m.recent {
		if !seen[v.Path] {
			rows = append(rows, row{path: v.Path, date: v.Time})
		}
	}
	return rows
}

func shortcutFields(s store.Shortcut) []string {
	return []string{s.Name, s.Path, s.Description}
}

func (m *Model) visitFields(v store.Visit) []string {
	if !m.cfg.IncludeShortcuts {
		return []string{v.Path}
	}
	if s, ok := m.resolver.Match(v.Path); ok {
		return []string{v.Path, s.Name, s.Description}
	}
	return []string{v.Path}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	if m.view == HelpView {
		return m.handleHelpKey(msg)
	}
	if m.mode == EditingDescription {
		return m.handleEditKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(Result{})
	case key.Matches(msg, m.keys.Back):
		m.view = m.helpReturn
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(Result{})
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
	case key.Matches(msg, m.keys.Back):
		m.finishEdit()
	case key.Matches(msg, m.keys.Select):
		m.saveDescription()
	case key.Matches(msg, m.keys.Erase):
		m.edit = dropLastRune(m.edit)
	default:
		if s, ok := printable(msg); ok {
			m.edit += s
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(Result{})
	case key.Matches(msg, m.keys.Back):
		if m.mode == Filtering {
			m.mode = Browsing
			m.filter = ""
			m.refresh()
			return m, nil
		}
		return m.quit(Result{})
	case key.Matches(msg, m.keys.Select):
		if r, ok := m.selected(); ok {
			return m.quit(Result{Path: r.path, Selected: true})
		}
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
	case key.Matches(msg, m.keys.Tab):
		if m.view == HistoryView {
			m.view = ShortcutsView
		} else {
			m.view = HistoryView
		}
		m.refresh()
	case key.Matches(msg, m.keys.Erase):
		if m.filter == "" {
			return m, nil
		}
		m.filter = dropLastRune(m.filter)
		if m.filter == "" {
			m.mode = Browsing
		}
		m.refresh()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.LargeUp):
		m.move(-m.cfg.LargeStep)
	case key.Matches(msg, m.keys.LargeDown):
		m.move(m.cfg.LargeStep)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.pageSize())
	case key.Matches(msg, m.keys.Home):
		m.selection = 0
		m.clamp()
	case key.Matches(msg, m.keys.End):
		m.selection = len(m.rows) - 1
		m.clamp()
	case key.Matches(msg, m.keys.Fuzzy):
		m.searchMode = m.searchMode.Toggle()
		if m.mode == Filtering {
			m.refresh()
		}
	case key.Matches(msg, m.keys.FullPath):
		m.fullPath = !m.fullPath
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, m.keys.Edit):
		if m.view == ShortcutsView {
			m.startEdit()
		}
	default:
		if s, ok := printable(msg); ok {
			m.filter += s
			m.mode = Filtering
			m.refresh()
		}
	}
	return m, nil
}

func (m Model) quit(r Result) (tea.Model, tea.Cmd) {
	m.result = r
	m.done = true
	return m, tea.Quit
}

func (m *Model) openHelp() {
	if m.view != HelpView {
		m.helpReturn = m.view
	}
	m.view = HelpView
}

func (m Model) selected() (row, bool) {
	if m.selection < 0 || m.selection >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.selection], true
}

// move shifts the selection by delta rows without wrapping around.
func (m *Model) move(delta int) {
	m.selection += delta
	m.clamp()
}

// clamp keeps the selection inside the list and the list window around
// the selection.
func (m *Model) clamp() {
	m.selection = max(min(m.selection, len(m.rows)-1), 0)
	page := m.pageSize()
	if m.selection < m.offset {
		m.offset = m.selection
	}
	if m.selection >= m.offset+page {
		m.offset = m.selection - page + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-page), 0)
}

// deleteSelected removes the selected row from the store, then from
// memory. On a storage failure nothing in memory changes.
func (m *Model) deleteSelected() {
	r, ok := m.selected()
	if !ok {
		return
	}

	var err error
	if r.shortcut != nil {
		err = m.store.DeleteShortcut(r.shortcut.Name)
	} else {
		err = m.store.DeleteVisit(r.path)
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		m.logger.Error("delete failed", slog.String("path", r.path), slog.String("error", err.Error()))
		m.status = "delete failed: " + err.Error()
		return
	}

	if r.shortcut != nil {
		name := r.shortcut.Name
		m.shortcuts = slices.DeleteFunc(m.shortcuts, func(s store.Shortcut) bool { return s.Name == name })
		m.resolver = pretty.NewResolver(m.shortcuts, m.home)
	} else {
		m.recent = slices.DeleteFunc(m.recent, func(v store.Visit) bool { return v.Path == r.path })
		m.suggestions = slices.DeleteFunc(m.suggestions, func(s suggest.Suggestion) bool { return s.Path == r.path })
	}

	m.rows = slices.Delete(m.rows, m.selection, m.selection+1)
	m.clamp()
}

func (m *Model) startEdit() {
	r, ok := m.selected()
	if !ok || r.shortcut == nil {
		return
	}
	m.editReturn = m.mode
	m.mode = EditingDescription
	m.editTarget = r.shortcut.Name
	m.edit = r.shortcut.Description
}

// saveDescription persists the edited description and leaves editing.
// The in-memory shortcut changes only once the store accepted it.
func (m *Model) saveDescription() {
	i := slices.IndexFunc(m.shortcuts, func(s store.Shortcut) bool { return s.Name == m.editTarget })
	if i < 0 {
		m.finishEdit()
		return
	}
	s := m.shortcuts[i]
	if err := m.store.AddShortcut(s.Name, s.Path, m.edit); err != nil {
		m.logger.Error("save description failed", slog.String("shortcut", s.Name), slog.String("error", err.Error()))
		m.status = "save failed: " + err.Error()
		m.finishEdit()
		return
	}
	m.shortcuts[i].Description = m.edit
	for j := range m.rows {
		if m.rows[j].shortcut != nil && m.rows[j].shortcut.Name == s.Name {
			m.rows[j].shortcut.Description = m.edit
		}
	}
	m.finishEdit()
}

func (m *Model) finishEdit() {
	m.mode = m.editReturn
	m.edit = ""
	m.editTarget = ""
}

// printable returns the text a key press types, if any.
func printable(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return "", false
		}
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
