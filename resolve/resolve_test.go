package resolve

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeTree creates the named files (slash-separated) under dir, with the
// name itself as content.
func writeTree(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func symlink(t *testing.T, oldname, newname string) {
	t.Helper()
	if err := os.Symlink(oldname, newname); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

func names(files []File) []string {
	r := make([]string, 0, len(files))
	for _, f := range files {
		r = append(r, f.Name)
	}
	return r
}

func newResolver(t *testing.T, base string) *Resolver {
	t.Helper()
	r, err := New(base, nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "file.txt")

	if _, err := New(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("Expected error for missing base")
	}
	if _, err := New(filepath.Join(dir, "file.txt"), nil); err == nil {
		t.Error("Expected error for a base that is a file")
	}

	r := newResolver(t, dir)
	canon, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if r.Base() != canon {
		t.Errorf("Expected base %q but got %q", canon, r.Base())
	}
}

func TestNewWrap(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a/b.html")
	var wrapped bool
	r, err := New(dir, func(inner fs.FS) fs.FS {
		wrapped = true
		return inner
	})
	if err != nil {
		t.Fatal(err)
	}
	if !wrapped {
		t.Error("wrap was not called")
	}
	b, err := r.ReadFile(File{Name: "a/b.html"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a/b.html" {
		t.Errorf("Unexpected content %q", b)
	}
}

func TestExact(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir,
		"silly/forest.html",
		"silly/deep/er.html",
		"silly/notes.txt",
		"top.html",
	)
	if err := os.MkdirAll(filepath.Join(dir, "dir.html"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := newResolver(t, dir)

	tests := []struct {
		name string
		want string // empty means not found
	}{
		{"silly/forest.html", "silly/forest.html"},
		{"silly/deep/er.html", "silly/deep/er.html"},
		{"top.html", "top.html"},
		{"silly/missing.html", ""},
		{"silly/notes.txt", ""},
		{"silly/notes.txt.html", ""},
		{"dir.html", ""},
		{"silly", ""},
		{"", ""},
		{"../outside.html", ""},
		{"silly/../top.html", "top.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := r.Exact(tt.name)
			if tt.want == "" {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound but got %v (file %q)", err, f.Name)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f.Name != tt.want {
				t.Errorf("Expected %q but got %q", tt.want, f.Name)
			}
		})
	}
}

func TestLookupAnySuffix(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "README.md")
	r := newResolver(t, dir)
	f, err := r.Lookup("README.md")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "README.md" {
		t.Errorf("Unexpected name %q", f.Name)
	}
	if _, err := r.Exact("README.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Exact should reject README.md, got %v", err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir,
		"silly/forest.html",
		"silly/deep/er.html",
		"silly/readme.txt",
		"christmas/tree.html",
		"top.html",
		"empty/nothing.txt",
	)
	r := newResolver(t, dir)
	ctx := context.Background()

	tests := []struct {
		dir  string
		want []string
	}{
		{"", []string{"christmas/tree.html", "silly/deep/er.html", "silly/forest.html", "top.html"}},
		{"silly", []string{"silly/deep/er.html", "silly/forest.html"}},
		{"christmas", []string{"christmas/tree.html"}},
		{"empty", []string{}},
		{"missing", []string{}},
		{"top.html", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			files, err := r.Scan(ctx, tt.dir)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, names(files)); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.dir, diff)
			}
		})
	}
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a/b.html")
	r := newResolver(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Scan(ctx, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled but got %v", err)
	}
}

func TestSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "base")
	outside := filepath.Join(root, "outside")
	writeTree(t, base, "ok/inside.html")
	writeTree(t, outside, "secret.html", "more/hidden.html")

	if err := os.MkdirAll(filepath.Join(base, "evil"), 0o755); err != nil {
		t.Fatal(err)
	}
	symlink(t, filepath.Join(outside, "secret.html"), filepath.Join(base, "evil", "secret.html"))
	symlink(t, outside, filepath.Join(base, "link"))
	symlink(t, filepath.Join(base, "ok", "inside.html"), filepath.Join(base, "ok", "alias.html"))
	r := newResolver(t, base)
	ctx := context.Background()

	for _, name := range []string{"evil/secret.html", "link/secret.html", "link/more/hidden.html"} {
		if _, err := r.Exact(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Exact(%q) should not resolve outside the base, got %v", name, err)
		}
	}

	f, err := r.Exact("ok/alias.html")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "ok/inside.html" {
		t.Errorf("Expected alias to resolve to ok/inside.html, got %q", f.Name)
	}

	files, err := r.Scan(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ok/inside.html"}, names(files)); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}

	files, err = r.Scan(ctx, "link")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files through link, got %v", names(files))
	}
}

func TestSymlinkedBase(t *testing.T) {
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "real"), "a/b.html")
	symlink(t, filepath.Join(root, "real"), filepath.Join(root, "alias"))
	r := newResolver(t, filepath.Join(root, "alias"))
	f, err := r.Exact("a/b.html")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "a/b.html" {
		t.Errorf("Unexpected name %q", f.Name)
	}
}

func TestFile(t *testing.T) {
	tests := []struct {
		name, dir, title, link string
	}{
		{"silly/forest.html", "silly", "forest", "/silly/forest"},
		{"a/b/c.html", "a", "c", "/a/b/c"},
		{"a/x.y.html", "a", "x.y", "/a/x.y"},
		{"top.html", "", "top", "/top"},
		{"d/what?.html", "d", "what?", "/d/what%3F"},
		{"d/a b#c.html", "d", "a b#c", "/d/a%20b%23c"},
		{"odd/100%.html", "odd", "100%", "/odd/100%25"},
	}
	for _, tt := range tests {
		f := File{Name: tt.name}
		if f.Dir() != tt.dir || f.Title() != tt.title || f.Link() != tt.link {
			t.Errorf("File %q: got dir %q title %q link %q", tt.name, f.Dir(), f.Title(), f.Link())
		}
	}
}
