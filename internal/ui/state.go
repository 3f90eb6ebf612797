package ui

// View is the list shown to the user.
type View int

const (
	HistoryView View = iota
	ShortcutsView
	HelpView
)

func (v View) String() string {
	switch v {
	case ShortcutsView:
		return "Shortcuts"
	case HelpView:
		return "Help"
	}
	return "History"
}

// Mode is what typed characters currently edit.
type Mode int

const (
	// Browsing shows the unfiltered list.
	Browsing Mode = iota
	// Filtering narrows the list with the filter buffer.
	Filtering
	// EditingDescription edits the description of one shortcut.
	EditingDescription
)

// Result is the outcome of a session.
type Result struct {
	// Path is the chosen directory; empty when nothing was selected.
	Path     string
	Selected bool
}
