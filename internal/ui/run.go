package ui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts an interactive session drawn on out in the alternate screen
// and blocks until the user picks a path or quits. Stdout stays free for
// the caller to print the result.
func Run(st Store, out io.Writer, opts ...Option) (Result, error) {
	m, err := New(st, opts...)
	if err != nil {
		return Result{}, err
	}
	if out == nil {
		out = os.Stderr
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("navigator: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return Result{}, nil
	}
	return fm.Result(), nil
}
