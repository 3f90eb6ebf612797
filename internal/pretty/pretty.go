// Package pretty renders absolute paths compactly by replacing the longest
// matching shortcut target with the shortcut name, or the home directory
// with "~".
package pretty

import (
	"cmp"
	"path/filepath"
	"slices"

	"github.com/starford/cdir/internal/pathutil"
	"github.com/starford/cdir/internal/store"
)

// Kind tells which substitution produced a Rendered value.
type Kind int

const (
	Plain Kind = iota
	Home
	Shortcut
)

// truncMark replaces the characters dropped by truncation.
const truncMark = "*"

// Rendered is a display form of a path. The substituted token (shortcut
// name or "~") is kept apart from the remaining text so callers can style
// them differently.
type Rendered struct {
	Kind Kind
	// Name is the shortcut name when Kind is Shortcut.
	Name string
	// Tail is the text shown after the token. For Plain it is everything.
	Tail string
}

// Token returns the substituted prefix: "[name]", "~" or "".
func (r Rendered) Token() string {
	switch r.Kind {
	case Shortcut:
		return "[" + r.Name + "]"
	case Home:
		return "~"
	}
	return ""
}

func (r Rendered) String() string {
	return r.Token() + r.Tail
}

// Resolver matches paths against a fixed set of shortcuts.
type Resolver struct {
	shortcuts []store.Shortcut
	home      string
}

// NewResolver returns a resolver over shortcuts. home is the user's home
// directory; pass "" to disable "~" substitution.
func NewResolver(shortcuts []store.Shortcut, home string) *Resolver {
	sc := make([]store.Shortcut, 0, len(shortcuts))
	for _, s := range shortcuts {
		if s.Path == "" {
			continue
		}
		s.Path = filepath.Clean(s.Path)
		sc = append(sc, s)
	}
	// Longest target first; equal targets resolve to the smallest name.
	slices.SortFunc(sc, func(a, b store.Shortcut) int {
		if c := cmp.Compare(len(b.Path), len(a.Path)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if home != "" {
		home = filepath.Clean(home)
		if home == string(filepath.Separator) {
			home = ""
		}
	}
	return &Resolver{shortcuts: sc, home: home}
}

// Match returns the shortcut whose target is the longest segment-exact
// prefix of path.
func (r *Resolver) Match(path string) (store.Shortcut, bool) {
	return r.match(path, true)
}

func (r *Resolver) match(path string, allowExact bool) (store.Shortcut, bool) {
	for _, s := range r.shortcuts {
		if !allowExact && s.Path == path {
			continue
		}
		if pathutil.HasPrefix(path, s.Path) {
			return s, true
		}
	}
	return store.Shortcut{}, false
}

// Render returns the compact form of path. A positive maxWidth bounds the
// result to that many characters, keeping the token and the end of the
// path and marking the cut with "*".
func (r *Resolver) Render(path string, maxWidth int) Rendered {
	return r.render(path, maxWidth, true)
}

// RenderTarget renders the target of a shortcut. Shortcuts pointing at
// exactly path are ignored so a target is never displayed as its own name.
func (r *Resolver) RenderTarget(path string, maxWidth int) Rendered {
	return r.render(path, maxWidth, false)
}

func (r *Resolver) render(path string, maxWidth int, allowExact bool) Rendered {
	if s, ok := r.match(path, allowExact); ok {
		return shortcutForm(path, s, maxWidth)
	}
	if r.home != "" && pathutil.HasPrefix(path, r.home) {
		return homeForm(path, r.home, maxWidth)
	}
	return Rendered{Kind: Plain, Tail: keepEnd(path, maxWidth)}
}

func shortcutForm(path string, s store.Shortcut, w int) Rendered {
	out := Rendered{Kind: Shortcut, Name: s.Name}
	tokenLen := runeLen(s.Name) + 2
	rest := pathutil.Rel(path, s.Path)
	if w <= 0 {
		out.Tail = rest
		return out
	}
	if rest == "" {
		if tokenLen > w {
			return Rendered{Kind: Plain, Tail: truncMark}
		}
		return out
	}
	switch {
	case tokenLen+1 == w:
		out.Tail = truncMark
		return out
	case tokenLen+1 > w:
		return Rendered{Kind: Plain, Tail: truncMark}
	}
	out.Tail = "/" + keepEnd(rest[1:], w-tokenLen-1)
	return out
}

func homeForm(path, home string, w int) Rendered {
	out := Rendered{Kind: Home}
	rest := pathutil.Rel(path, home)
	if rest == "" {
		return out
	}
	switch {
	case w <= 0:
		out.Tail = rest
	case w == 1:
		return Rendered{Kind: Plain, Tail: truncMark}
	case w == 2:
		out.Tail = truncMark
	case w == 3:
		out.Tail = "/" + truncMark
	default:
		out.Tail = "/" + keepEnd(rest[1:], w-2)
	}
	return out
}

// keepEnd returns s when it fits in w characters, otherwise "*" followed
// by the last w-1 characters of s. w <= 0 means no limit.
func keepEnd(s string, w int) string {
	if w <= 0 {
		return s
	}
	rs := []rune(s)
	if len(rs) <= w {
		return s
	}
	return truncMark + string(rs[len(rs)-(w-1):])
}

func runeLen(s string) int {
	return len([]rune(s))
}
