package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/cdir/internal/pretty"
	"github.com/starford/cdir/internal/search"
)

func (m Model) View() string {
	if m.done {
		return ""
	}
	if m.view == HelpView {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')
	b.WriteString(m.prompt())
	b.WriteByte('\n')

	if len(m.rows) == 0 {
		b.WriteString(m.styles.Description.Render("  no matching entries"))
		b.WriteByte('\n')
	}
	end := min(m.offset+m.pageSize(), len(m.rows))
	nameWidth := m.nameWidth()
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i, nameWidth))
		b.WriteByte('\n')
	}

	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) header() string {
	tab := func(v View) string {
		if m.view == v {
			return m.styles.Header.Render(" " + v.String() + " ")
		}
		return m.styles.Title.Render(" " + v.String() + " ")
	}
	flags := "[" + m.searchMode.String() + "]"
	if m.fullPath {
		flags += " [full path]"
	}
	return fmt.Sprintf("%s%s  %s", tab(HistoryView), tab(ShortcutsView), m.styles.Date.Render(flags))
}

func (m Model) prompt() string {
	if m.mode == EditingDescription {
		label := m.styles.TextEm.Render("Description of [" + m.editTarget + "]: ")
		return label + m.styles.Text.Render(m.edit) + "_"
	}
	if m.filter == "" {
		return m.styles.TextEm.Render("> ") + m.styles.Description.Render("type to filter")
	}
	return m.styles.TextEm.Render("> ") + m.styles.Text.Render(m.filter) + "_"
}

func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(" cdir help "))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Description.Render("Fuzzy tokens: ^start  end$  !exclude"))
	b.WriteString("\n")
	b.WriteString(m.styles.Description.Render("esc to go back"))
	return b.String()
}

// nameWidth is the widest shortcut name on screen, for column alignment.
func (m Model) nameWidth() int {
	w := 0
	if m.view != ShortcutsView {
		return w
	}
	for _, r := range m.rows {
		if r.shortcut != nil {
			w = max(w, lipgloss.Width(r.shortcut.Name))
		}
	}
	return w
}

func (m Model) renderRow(i, nameWidth int) string {
	r := m.rows[i]
	marker := "  "
	if i == m.selection {
		marker = m.styles.Selected.Render(">") + " "
	}

	if r.shortcut != nil {
		name := m.styles.ShortcutName.Render(fmt.Sprintf("%-*s", nameWidth, r.shortcut.Name))
		used := 2 + nameWidth + 2
		line := marker + name + "  " + m.displayPath(r.path, m.budget(used), true)
		if r.shortcut.Description != "" {
			line += "  " + m.styles.Description.Render(r.shortcut.Description)
		}
		return line
	}

	date := m.styles.Date.Render(r.date.Format(m.cfg.DateFormat))
	mark := "  "
	if r.suggested {
		mark = m.styles.Suggested.Render("* ")
	}
	used := 2 + lipgloss.Width(r.date.Format(m.cfg.DateFormat)) + 1 + 2
	return marker + date + " " + mark + m.displayPath(r.path, m.budget(used), false)
}

// budget returns the width available to a path after used columns.
func (m Model) budget(used int) int {
	if m.cfg.MaxWidth > 0 {
		return m.cfg.MaxWidth
	}
	if m.width <= 0 {
		return 0
	}
	return max(m.width-used, 1)
}

// displayPath renders path compactly, or in full when full-path display is
// on, highlighting the characters the filter matched.
func (m Model) displayPath(path string, width int, target bool) string {
	var offsets []int
	if m.mode == Filtering {
		offsets = search.Highlight(m.filter, m.searchMode, path)
	}
	if m.fullPath {
		return m.styles.Mark(path, offsets, m.styles.Path)
	}

	var rd pretty.Rendered
	if target {
		rd = m.resolver.RenderTarget(path, width)
	} else {
		rd = m.resolver.Render(path, width)
	}
	if len(offsets) == 0 || rd.Tail == "" || !strings.HasSuffix(path, rd.Tail) {
		return m.styles.RenderPath(rd)
	}

	shift := len(path) - len(rd.Tail)
	var tailOffsets []int
	for _, o := range offsets {
		if o >= shift {
			tailOffsets = append(tailOffsets, o-shift)
		}
	}
	tail := m.styles.Mark(rd.Tail, tailOffsets, m.styles.Path)
	return m.styles.RenderPath(pretty.Rendered{Kind: rd.Kind, Name: rd.Name}) + tail
}
