package pathutil

import (
	"errors"
	"testing"

	"github.com/starford/cdir/internal/apperr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, base, want string
	}{
		{"/home/u/", "", "/home/u"},
		{"/home/u/../v/./w", "", "/home/v/w"},
		{"src", "/home/u", "/home/u/src"},
		{"/", "", "/"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in, tt.base)
		if err != nil {
			t.Fatalf("Normalize(%q, %q): %v", tt.in, tt.base, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%q, %q) = %q, want %q", tt.in, tt.base, got, tt.want)
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, in := range []string{"", "  ", "relative/dir"} {
		if _, err := Clean(in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Clean(%q) err = %v, want ErrValidation", in, err)
		}
	}
}

func TestHasPrefix_SegmentBoundary(t *testing.T) {
	if !HasPrefix("/home/abc/d", "/home/abc") {
		t.Error("expected /home/abc/d under /home/abc")
	}
	if !HasPrefix("/home/abc", "/home/abc") {
		t.Error("expected equality to count as prefix")
	}
	if HasPrefix("/home/abcd", "/home/abc") {
		t.Error("partial segment must not match")
	}
	if !HasPrefix("/etc", "/") {
		t.Error("everything is under the root")
	}
}

func TestRel(t *testing.T) {
	if got := Rel("/home/u/demo/src", "/home/u/demo"); got != "/src" {
		t.Errorf("Rel = %q", got)
	}
	if got := Rel("/home/u", "/home/u"); got != "" {
		t.Errorf("Rel equal = %q", got)
	}
	if got := Rel("/etc", "/"); got != "/etc" {
		t.Errorf("Rel root = %q", got)
	}
}

func TestRelations(t *testing.T) {
	if !IsChild("/a/b", "/a") || IsChild("/a", "/a") {
		t.Error("IsChild")
	}
	if !IsSibling("/a/b", "/a/c") || IsSibling("/a/b", "/a/b") || IsSibling("/a/b", "/c/d") {
		t.Error("IsSibling")
	}
}
