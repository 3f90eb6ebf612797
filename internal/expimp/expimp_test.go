package expimp

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/cdir/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestImportPathsSkipsBadEntries(t *testing.T) {
	db := testutil.TestDB(t)
	in := `
- date: "100"
  path: /a
- date: 200
  path: /b
- date: yesterday
  path: /c
- date: "300"
  path: relative/dir
- date: "400"
  path: /a
`
	rep, err := ImportPaths(strings.NewReader(in), db, discard)
	if err != nil {
		t.Fatalf("ImportPaths: %v", err)
	}
	if diff := cmp.Diff(Report{Imported: 3, Skipped: 2}, rep); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	recent, _ := db.ListRecentPaths(0)
	var got []string
	for _, v := range recent {
		got = append(got, v.Path)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, got); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}
	if recent[0].Time.Unix() != 400 {
		t.Errorf("/a latest = %d, want 400", recent[0].Time.Unix())
	}
}

func TestImportPathsRejectsMalformedYAML(t *testing.T) {
	db := testutil.TestDB(t)
	if _, err := ImportPaths(strings.NewReader("{not: [a list"), db, discard); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestImportEmptyFile(t *testing.T) {
	db := testutil.TestDB(t)
	rep, err := ImportShortcuts(strings.NewReader(""), db, discard)
	if err != nil || rep != (Report{}) {
		t.Errorf("rep=%+v err=%v", rep, err)
	}
}

func TestPathsRoundTrip(t *testing.T) {
	src := testutil.TestDB(t)
	testutil.Visits(t, src, time.Unix(1000, 0), "/x", "/y", "/x")

	var buf bytes.Buffer
	n, err := ExportPaths(&buf, src)
	if err != nil {
		t.Fatalf("ExportPaths: %v", err)
	}
	if n != 3 {
		t.Errorf("exported %d entries, want 3", n)
	}
	if !strings.Contains(buf.String(), `date: "1000"`) {
		t.Errorf("dates should be exported as strings:\n%s", buf.String())
	}

	dst := testutil.TestDB(t)
	if _, err := ImportPaths(&buf, dst, discard); err != nil {
		t.Fatalf("ImportPaths: %v", err)
	}
	a, _ := src.ListRecentPaths(0)
	b, _ := dst.ListRecentPaths(0)
	if len(a) != len(b) {
		t.Fatalf("recent lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Path != b[i].Path || !a[i].Time.Equal(b[i].Time) {
			t.Errorf("row %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestShortcutsImportExport(t *testing.T) {
	db := testutil.TestDB(t)
	in := `
- name: web
  path: /srv/web
  description: front end
- name: ""
  path: /nowhere
- name: etc
  path: /etc
`
	rep, err := ImportShortcuts(strings.NewReader(in), db, discard)
	if err != nil {
		t.Fatalf("ImportShortcuts: %v", err)
	}
	if diff := cmp.Diff(Report{Imported: 2, Skipped: 1}, rep); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if _, err := ExportShortcuts(&buf, db); err != nil {
		t.Fatalf("ExportShortcuts: %v", err)
	}
	want := `- name: etc
  path: /etc
- name: web
  path: /srv/web
  description: front end
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
}
