package pretty

import (
	"testing"

	"github.com/starford/cdir/internal/store"
)

func demoResolver() *Resolver {
	return NewResolver([]store.Shortcut{
		{Name: "fe", Path: "/home/u/demo/src/frontend"},
		{Name: "micros", Path: "/home/u/demo"},
	}, "/home/u")
}

func TestRenderLongestPrefix(t *testing.T) {
	r := demoResolver()
	tests := []struct{ path, want string }{
		{"/home/u/demo/src/frontend/assets", "[fe]/assets"},
		{"/home/u/demo/src/backend", "[micros]/src/backend"},
		{"/home/u/demo", "[micros]"},
		{"/home/u/demo/src/frontend", "[fe]"},
		{"/home/u/demolition", "~/demolition"},
		{"/home/u", "~"},
		{"/home/user2", "/home/user2"},
		{"/etc/nginx", "/etc/nginx"},
	}
	for _, tt := range tests {
		if got := r.Render(tt.path, 0).String(); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRenderNeverNests(t *testing.T) {
	r := NewResolver([]store.Shortcut{
		{Name: "a", Path: "/x"},
		{Name: "b", Path: "/x/y/z"},
	}, "")
	got := r.Render("/x/y/z/w", 0)
	if got.String() != "[b]/w" || got.Kind != Shortcut || got.Name != "b" {
		t.Errorf("Render = %+v (%q), want [b]/w", got, got.String())
	}
}

func TestEqualTargetsPickSmallestName(t *testing.T) {
	r := NewResolver([]store.Shortcut{
		{Name: "zeta", Path: "/srv"},
		{Name: "alpha", Path: "/srv/"},
	}, "")
	if got := r.Render("/srv/app", 0).String(); got != "[alpha]/app" {
		t.Errorf("got %q, want [alpha]/app", got)
	}
	s, ok := r.Match("/srv")
	if !ok || s.Name != "alpha" {
		t.Errorf("Match = %+v, %v; want alpha", s, ok)
	}
}

func TestRenderTargetSkipsExact(t *testing.T) {
	r := demoResolver()
	if got := r.RenderTarget("/home/u/demo/src/frontend", 0).String(); got != "[micros]/src/frontend" {
		t.Errorf("got %q, want [micros]/src/frontend", got)
	}
	if got := r.RenderTarget("/home/u/demo", 0).String(); got != "~/demo" {
		t.Errorf("got %q, want ~/demo", got)
	}
}

func TestShortcutTruncation(t *testing.T) {
	r := NewResolver([]store.Shortcut{{Name: "docs", Path: "/home/user/docs"}}, "")
	path := "/home/user/docs/project"
	for w, want := range map[int]string{
		80: "[docs]/project",
		14: "[docs]/project",
		13: "[docs]/*oject",
		9:  "[docs]/*t",
		8:  "[docs]/*",
		7:  "[docs]*",
		6:  "*",
	} {
		if got := r.Render(path, w).String(); got != want {
			t.Errorf("width %d: got %q, want %q", w, got, want)
		}
	}
}

func TestShortcutTargetKeepsNameWhenItFits(t *testing.T) {
	r := demoResolver()
	for w, want := range map[int]string{
		0:  "[micros]",
		20: "[micros]",
		9:  "[micros]",
		8:  "[micros]",
		7:  "*",
	} {
		if got := r.Render("/home/u/demo", w).String(); got != want {
			t.Errorf("width %d: got %q, want %q", w, got, want)
		}
	}
}

func TestHomeTruncation(t *testing.T) {
	r := NewResolver(nil, "/home/testuser")
	path := "/home/testuser/project"
	for w, want := range map[int]string{
		9: "~/project",
		8: "~/*oject",
		4: "~/*t",
		3: "~/*",
		2: "~*",
		1: "*",
	} {
		if got := r.Render(path, w).String(); got != want {
			t.Errorf("width %d: got %q, want %q", w, got, want)
		}
	}
	for _, w := range []int{1, 2, 80} {
		if got := r.Render("/home/testuser", w).String(); got != "~" {
			t.Errorf("exact home at width %d: got %q, want ~", w, got)
		}
	}
}

func TestPlainTruncation(t *testing.T) {
	r := NewResolver(nil, "/home/testuser")
	if got := r.Render("/other/path/project", 19).String(); got != "/other/path/project" {
		t.Errorf("got %q", got)
	}
	if got := r.Render("/other/path/project", 18).String(); got != "*ther/path/project" {
		t.Errorf("got %q", got)
	}
}

func TestRenderedParts(t *testing.T) {
	got := demoResolver().Render("/home/u/demo/x", 0)
	if got.Token() != "[micros]" || got.Tail != "/x" {
		t.Errorf("Token = %q, Tail = %q", got.Token(), got.Tail)
	}
	home := demoResolver().Render("/home/u/notes", 0)
	if home.Kind != Home || home.Token() != "~" || home.Tail != "/notes" {
		t.Errorf("home parts = %+v", home)
	}
}
