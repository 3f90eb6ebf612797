// Package theme turns configured colors into lipgloss styles.
package theme

import (
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/muesli/termenv"

	"github.com/starford/cdir/internal/pretty"
)

// colorRe accepts "#rrggbb" or an ANSI color number.
var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// Theme holds the configured colors.
type Theme struct {
	Title        string `yaml:"title"`
	Text         string `yaml:"text"`
	TextEm       string `yaml:"text_em"`
	Date         string `yaml:"date"`
	Path         string `yaml:"path"`
	Highlight    string `yaml:"highlight"`
	ShortcutName string `yaml:"shortcut_name"`
	Description  string `yaml:"description"`
	HomeTilde    string `yaml:"home_tilde"`
	HeaderFg     string `yaml:"header_fg"`
	HeaderBg     string `yaml:"header_bg"`
}

// Default returns the built-in theme.
func Default() Theme {
	return Theme{
		Title:        "#1d5cba",
		Text:         "#2a2a2a",
		TextEm:       "#009dc8",
		Date:         "#888888",
		Path:         "#2a2929",
		Highlight:    "#fbe9a4",
		ShortcutName: "#00aa00",
		Description:  "#808080",
		HomeTilde:    "#888888",
		HeaderFg:     "#ffffff",
		HeaderBg:     "#2741b7",
	}
}

// Validate validates the theme colors.
func (t *Theme) Validate() error {
	color := validation.Match(colorRe).Error("must be #rrggbb or an ANSI color number")
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, color),
		validation.Field(&t.Text, color),
		validation.Field(&t.TextEm, color),
		validation.Field(&t.Date, color),
		validation.Field(&t.Path, color),
		validation.Field(&t.Highlight, color),
		validation.Field(&t.ShortcutName, color),
		validation.Field(&t.Description, color),
		validation.Field(&t.HomeTilde, color),
		validation.Field(&t.HeaderFg, color),
		validation.Field(&t.HeaderBg, color),
	)
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title        lipgloss.Style
	Text         lipgloss.Style
	TextEm       lipgloss.Style
	Date         lipgloss.Style
	Path         lipgloss.Style
	Highlight    lipgloss.Style
	ShortcutName lipgloss.Style
	Description  lipgloss.Style
	HomeTilde    lipgloss.Style
	Header       lipgloss.Style
	Selected     lipgloss.Style
	Suggested    lipgloss.Style
	Status       lipgloss.Style
}

// NewStyles builds styles for r. A nil renderer uses the lipgloss default.
func NewStyles(t Theme, r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	fg := func(c string) lipgloss.Style {
		s := r.NewStyle()
		if c != "" {
			s = s.Foreground(lipgloss.Color(c))
		}
		return s
	}
	return Styles{
		Title:        fg(t.Title).Bold(true),
		Text:         fg(t.Text),
		TextEm:       fg(t.TextEm).Bold(true),
		Date:         fg(t.Date),
		Path:         fg(t.Path),
		Highlight:    r.NewStyle().Background(lipgloss.Color(t.Highlight)),
		ShortcutName: fg(t.ShortcutName).Bold(true),
		Description:  fg(t.Description).Italic(true),
		HomeTilde:    fg(t.HomeTilde),
		Header:       fg(t.HeaderFg).Background(lipgloss.Color(t.HeaderBg)).Bold(true),
		Selected:     fg(t.TextEm).Bold(true).Reverse(true),
		Suggested:    fg(t.TextEm),
		Status:       fg(t.Description),
	}
}

// ForcedRenderer returns a renderer writing to w that always emits true
// color sequences, for output consumed by a shell prompt rather than a tty.
func ForcedRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.TrueColor)
	return r
}

// RenderPath styles a rendered path: the shortcut token or "~" gets its
// own style and the tail uses the path style.
func (s Styles) RenderPath(r pretty.Rendered) string {
	var b strings.Builder
	switch r.Kind {
	case pretty.Shortcut:
		b.WriteString(s.ShortcutName.Render(r.Token()))
	case pretty.Home:
		b.WriteString(s.HomeTilde.Render(r.Token()))
	}
	if r.Tail != "" {
		b.WriteString(s.Path.Render(r.Tail))
	}
	return b.String()
}

// Mark renders text with base, applying the highlight style to the bytes
// at the given offsets. Offsets must be sorted.
func (s Styles) Mark(text string, offsets []int, base lipgloss.Style) string {
	if len(offsets) == 0 {
		return base.Render(text)
	}
	hl := s.Highlight.Inherit(base)

	var b strings.Builder
	k := 0
	start := 0
	inHL := false
	flush := func(end int) {
		if end <= start {
			return
		}
		if inHL {
			b.WriteString(hl.Render(text[start:end]))
		} else {
			b.WriteString(base.Render(text[start:end]))
		}
		start = end
	}
	for i := range text {
		for k < len(offsets) && offsets[k] < i {
			k++
		}
		on := k < len(offsets) && offsets[k] == i
		if on != inHL {
			flush(i)
			inHL = on
		}
	}
	flush(len(text))
	return b.String()
}
