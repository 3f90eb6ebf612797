// Package search filters and orders in-memory candidate lists against a
// free-text query.
//
// Candidates expose one or more searchable texts through a fields function;
// the first field is the candidate's primary text and is used for the
// length tie-break. Matching is case-insensitive in both modes.
package search

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

const (
	contiguousBase = 2000
	scatteredBase  = 1000
	maxPosPenalty  = 999
	maxGapPenalty  = 500
	maxLeadPenalty = 499
)

// token is one whitespace-separated fuzzy query term.
type token struct {
	text   string
	negate bool
	prefix bool
	suffix bool
}

// plain reports whether the token takes part in scoring.
func (t token) plain() bool {
	return !t.negate && !t.prefix && !t.suffix
}

// parseQuery splits q into lower-cased tokens. Modifiers are read in the
// order "!", "^", then a trailing "$"; tokens left empty are dropped.
func parseQuery(q string) []token {
	var out []token
	for _, f := range strings.Fields(strings.ToLower(q)) {
		var t token
		if strings.HasPrefix(f, "!") {
			t.negate = true
			f = f[1:]
		}
		if strings.HasPrefix(f, "^") {
			t.prefix = true
			f = f[1:]
		}
		if strings.HasSuffix(f, "$") {
			t.suffix = true
			f = f[:len(f)-1]
		}
		if f == "" {
			continue
		}
		t.text = f
		out = append(out, t)
	}
	return out
}

// holds reports whether the token's predicate, ignoring negation, is
// satisfied by the lower-cased text.
func (t token) holds(text string) bool {
	switch {
	case t.prefix && t.suffix:
		return text == t.text
	case t.prefix:
		return strings.HasPrefix(text, t.text)
	case t.suffix:
		return strings.HasSuffix(text, t.text)
	default:
		return strings.Contains(text, t.text)
	}
}

// Filter returns the items matching query under mode. Exact mode keeps the
// natural order of items. Fuzzy mode orders survivors by descending score,
// then by shorter primary text, then by natural order. An empty query
// returns items unchanged.
func Filter[T any](query string, mode Mode, items []T, fields func(T) []string) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	texts := make([][]string, len(items))
	for i, it := range items {
		fs := fields(it)
		lowered := make([]string, len(fs))
		for j, f := range fs {
			lowered[j] = strings.ToLower(f)
		}
		texts[i] = lowered
	}

	var keep []int
	if mode == Exact {
		keep = exact(strings.ToLower(query), texts)
	} else {
		keep = ranked(parseQuery(query), texts)
	}

	out := make([]T, 0, len(keep))
	for _, i := range keep {
		out = append(out, items[i])
	}
	return out
}

func exact(q string, texts [][]string) []int {
	var keep []int
	for i, fs := range texts {
		if slices.ContainsFunc(fs, func(f string) bool { return strings.Contains(f, q) }) {
			keep = append(keep, i)
		}
	}
	return keep
}

type candidate struct {
	index  int
	score  int
	length int
}

func ranked(tokens []token, texts [][]string) []int {
	alive := make([]bool, len(texts))
	for i := range alive {
		alive[i] = true
	}

	for _, t := range tokens {
		if t.plain() {
			continue
		}
		for i, fs := range texts {
			if !alive[i] {
				continue
			}
			hit := slices.ContainsFunc(fs, t.holds)
			if hit == t.negate {
				alive[i] = false
			}
		}
	}

	scores := make([]int, len(texts))
	scored := false
	for _, t := range tokens {
		if !t.plain() {
			continue
		}
		scored = true
		best := bestScores(t.text, texts, alive)
		for i := range texts {
			if !alive[i] {
				continue
			}
			s, ok := best[i]
			if !ok {
				alive[i] = false
				continue
			}
			scores[i] += s
		}
	}

	var cands []candidate
	for i, fs := range texts {
		if !alive[i] {
			continue
		}
		c := candidate{index: i, score: scores[i]}
		if len(fs) > 0 {
			c.length = len(fs[0])
		}
		cands = append(cands, c)
	}

	if scored {
		slices.SortFunc(cands, func(a, b candidate) int {
			if a.score != b.score {
				return b.score - a.score
			}
			if a.length != b.length {
				return a.length - b.length
			}
			return a.index - b.index
		})
	}

	keep := make([]int, len(cands))
	for i, c := range cands {
		keep[i] = c.index
	}
	return keep
}

// fieldSource flattens the fields of the live candidates into one
// fuzzy.Source, remembering which candidate each field belongs to.
type fieldSource struct {
	texts []string
	owner []int
}

func (s fieldSource) String(i int) string { return s.texts[i] }
func (s fieldSource) Len() int            { return len(s.texts) }

// bestScores returns, per candidate index, the best score of tok over the
// candidate's fields. Candidates with no matching field are absent.
func bestScores(tok string, texts [][]string, alive []bool) map[int]int {
	var src fieldSource
	for i, fs := range texts {
		if !alive[i] {
			continue
		}
		for _, f := range fs {
			src.texts = append(src.texts, f)
			src.owner = append(src.owner, i)
		}
	}

	best := make(map[int]int)
	for _, m := range fuzzy.FindFrom(tok, src) {
		s := tokenScore(tok, m.Str, m.MatchedIndexes)
		owner := src.owner[m.Index]
		if cur, ok := best[owner]; !ok || s > cur {
			best[owner] = s
		}
	}
	return best
}

// tokenScore rates one token against one text. A contiguous occurrence
// always outranks a scattered one; within each class earlier and tighter
// matches rank higher.
func tokenScore(tok, text string, matched []int) int {
	if pos := strings.Index(text, tok); pos >= 0 {
		return contiguousBase - min(pos, maxPosPenalty)
	}
	if len(matched) == 0 {
		return 0
	}
	first, last := matched[0], matched[len(matched)-1]
	gap := (last - first + 1) - len(tok)
	return scatteredBase - min(max(gap, 0), maxGapPenalty) - min(first, maxLeadPenalty)
}

// Highlight returns the byte offsets of text that query matches, for
// display. The result is sorted and free of duplicates.
func Highlight(query string, mode Mode, text string) []int {
	lower := strings.ToLower(text)
	if strings.TrimSpace(query) == "" || len(lower) != len(text) {
		return nil
	}

	var idx []int
	span := func(from, n int) {
		for i := from; i < from+n; i++ {
			idx = append(idx, i)
		}
	}

	if mode == Exact {
		q := strings.ToLower(query)
		if pos := strings.Index(lower, q); pos >= 0 {
			span(pos, len(q))
		}
		return idx
	}

	for _, t := range parseQuery(query) {
		if t.negate || !t.holdsOrFuzzy(lower) {
			continue
		}
		switch {
		case t.prefix:
			span(0, len(t.text))
		case t.suffix:
			span(len(lower)-len(t.text), len(t.text))
		default:
			if pos := strings.Index(lower, t.text); pos >= 0 {
				span(pos, len(t.text))
				continue
			}
			if ms := fuzzy.Find(t.text, []string{lower}); len(ms) > 0 {
				idx = append(idx, ms[0].MatchedIndexes...)
			}
		}
	}
	slices.Sort(idx)
	return slices.Compact(idx)
}

func (t token) holdsOrFuzzy(text string) bool {
	if t.plain() {
		return true
	}
	return t.holds(text)
}
