package search

import (
	"fmt"
	"strings"

	"github.com/starford/cdir/internal/apperr"
)

// Mode selects how a query is matched against candidates.
type Mode int

const (
	// Exact keeps candidates containing the query and never reorders them.
	Exact Mode = iota
	// Fuzzy splits the query into tokens and ranks candidates by match quality.
	Fuzzy
)

// ParseMode parses "exact" or "fuzzy" (case-insensitive). An empty string
// yields Exact.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return Exact, nil
	case "fuzzy":
		return Fuzzy, nil
	default:
		return Exact, fmt.Errorf("%w: unknown search mode %q", apperr.ErrValidation, s)
	}
}

func (m Mode) String() string {
	if m == Fuzzy {
		return "fuzzy"
	}
	return "exact"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Fuzzy {
		return Exact
	}
	return Fuzzy
}
