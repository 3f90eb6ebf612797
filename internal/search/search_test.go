package search

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/cdir/internal/apperr"
)

func self(s string) []string { return []string{s} }

func TestExactKeepsNaturalOrder(t *testing.T) {
	items := []string{"/tmp/a", "/var/tmp", "/home"}
	got := Filter("/tmp", Exact, items, self)
	if diff := cmp.Diff([]string{"/tmp/a", "/var/tmp"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExactCaseInsensitive(t *testing.T) {
	got := Filter("DOC", Exact, []string{"/home/u/Documents", "/etc"}, self)
	if diff := cmp.Diff([]string{"/home/u/Documents"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExactDoesNotSplitTokens(t *testing.T) {
	got := Filter("u src", Exact, []string{"/home/u/src", "/x/u src"}, self)
	if diff := cmp.Diff([]string{"/x/u src"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyQueryReturnsAll(t *testing.T) {
	items := []string{"/b", "/a"}
	for _, m := range []Mode{Exact, Fuzzy} {
		if diff := cmp.Diff(items, Filter("  ", m, items, self)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", m, diff)
		}
	}
}

func TestFuzzyAnchors(t *testing.T) {
	tests := []struct {
		query string
		items []string
		want  []string
	}{
		{"^/etc", []string{"/etc/nginx", "/usr/etc"}, []string{"/etc/nginx"}},
		{"src$", []string{"/home/u/project/src", "/src/old"}, []string{"/home/u/project/src"}},
		{"!src$", []string{"/a/src", "/b/lib", "/src/c"}, []string{"/b/lib", "/src/c"}},
		{"!^/src", []string{"/a/src", "/src/c"}, []string{"/a/src"}},
		{"^/etc$", []string{"/etc", "/etc/x"}, []string{"/etc"}},
		{"!tmp", []string{"/tmp/a", "/var/log"}, []string{"/var/log"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(tt.query, Fuzzy, tt.items, self)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFuzzyModifierOnlyQueryKeepsOrder(t *testing.T) {
	items := []string{"/z/long/path", "/a"}
	got := Filter("^/ ! $", Fuzzy, items, self)
	if diff := cmp.Diff(items, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyContiguousBeatsScattered(t *testing.T) {
	items := []string{"/s/r/c/x", "/home/src"}
	got := Filter("src", Fuzzy, items, self)
	if diff := cmp.Diff([]string{"/home/src", "/s/r/c/x"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyEarlierMatchWins(t *testing.T) {
	items := []string{"/aaaa/go", "/go/aaaa"}
	got := Filter("go", Fuzzy, items, self)
	if diff := cmp.Diff([]string{"/go/aaaa", "/aaaa/go"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyShorterTextWinsTie(t *testing.T) {
	items := []string{"/go/project/deep", "/go/project"}
	got := Filter("go", Fuzzy, items, self)
	if diff := cmp.Diff([]string{"/go/project", "/go/project/deep"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyNaturalOrderFinalTieBreak(t *testing.T) {
	items := []string{"/go/b", "/go/a"}
	got := Filter("go", Fuzzy, items, self)
	if diff := cmp.Diff(items, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyTokensAreANDed(t *testing.T) {
	items := []string{"/home/u/src", "/home/u/doc", "/opt/src"}
	got := Filter("home src", Fuzzy, items, self)
	if diff := cmp.Diff([]string{"/home/u/src"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyRejectsNonSubsequence(t *testing.T) {
	got := Filter("xyz", Fuzzy, []string{"/home", "/x/y/z"}, self)
	if diff := cmp.Diff([]string{"/x/y/z"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyMatchesAnyField(t *testing.T) {
	type sc struct{ name, desc string }
	items := []sc{{"web", "frontend app"}, {"api", "backend"}}
	got := Filter("front", Fuzzy, items, func(s sc) []string { return []string{s.name, s.desc} })
	if len(got) != 1 || got[0].name != "web" {
		t.Errorf("got %+v, want only web", got)
	}
}

func TestFuzzyDeterministic(t *testing.T) {
	items := []string{"/a/b/c", "/abc", "/x/abc/y", "/ab/xc", "/cba"}
	first := Filter("abc", Fuzzy, items, self)
	for range 10 {
		if diff := cmp.Diff(first, Filter("abc", Fuzzy, items, self)); diff != "" {
			t.Fatalf("non-deterministic order (-first +now):\n%s", diff)
		}
	}
}

func TestTokenScore(t *testing.T) {
	if s := tokenScore("go", "/go", nil); s != contiguousBase-1 {
		t.Errorf("contiguous at 1 = %d, want %d", s, contiguousBase-1)
	}
	// "/g/o": g at 1, o at 3, one gap byte.
	if s := tokenScore("go", "/g/o", []int{1, 3}); s != scatteredBase-1-1 {
		t.Errorf("scattered = %d, want %d", s, scatteredBase-2)
	}
}

func TestParseQuery(t *testing.T) {
	got := parseQuery("!^Foo$ bar ^ !")
	want := []token{{text: "foo", negate: true, prefix: true, suffix: true}, {text: "bar"}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(token{})); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestHighlight(t *testing.T) {
	if diff := cmp.Diff([]int{5, 6, 7}, Highlight("SRC", Exact, "/foo/src")); diff != "" {
		t.Errorf("exact mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 5, 6, 7}, Highlight("^/f src", Fuzzy, "/foo/src")); diff != "" {
		t.Errorf("fuzzy mismatch (-want +got):\n%s", diff)
	}
	if got := Highlight("!foo", Fuzzy, "/foo"); len(got) != 0 {
		t.Errorf("negated token highlighted %v", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Exact, "exact": Exact, "Fuzzy": Fuzzy} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("regex"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if Exact.Toggle() != Fuzzy || Fuzzy.Toggle() != Exact {
		t.Error("Toggle should flip the mode")
	}
}
