/*
Package resolve maps relative names onto files beneath a fixed base directory.

Every name is canonicalized against the operating system (symlinks and ".."
resolved) and accepted only when the result is a regular file that still lives
beneath the canonical base. File contents are read through an fs.FS rooted at
the base, which lets callers put a cache in front of the disk.

Scans enumerate ".html" files recursively. Entries that cannot be
canonicalized, or that escape the base, are left out without an error: an
entry that fails any check is simply not a candidate.
*/
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the suffix of the files a Resolver serves.
const Ext = ".html"

var (
	// ErrNotFound is returned when a name does not resolve to an acceptable file.
	ErrNotFound = errors.New("not found")
	// ErrOutside is returned when a canonical path is not beneath the base.
	ErrOutside = errors.New("outside base directory")
)

// Resolver resolves names beneath a canonical base directory.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	base string // canonical absolute path
	fsys fs.FS  // rooted at base
}

// New returns a Resolver for the base directory. The base is made absolute
// and its symlinks resolved once, here. If wrap is not nil, it is given the
// os.DirFS of the base and the file system it returns is used for directory
// walks and reads.
func New(base string, wrap func(fs.FS) fs.FS) (*Resolver, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve.New: %w", err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve.New: %w", err)
	}
	fi, err := os.Stat(canon)
	if err != nil {
		return nil, fmt.Errorf("resolve.New: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("resolve.New: %q is not a directory", canon)
	}
	var fsys fs.FS = os.DirFS(canon)
	if wrap != nil {
		fsys = wrap(fsys)
	}
	return &Resolver{base: canon, fsys: fsys}, nil
}

// Base returns the canonical base directory.
func (r *Resolver) Base() string {
	return r.base
}

// Lookup resolves name, a slash-separated path relative to the base, to a
// regular file beneath the base.
func (r *Resolver) Lookup(name string) (File, error) {
	rel, err := r.contain(filepath.Join(r.base, filepath.FromSlash(name)))
	if err != nil {
		return File{}, fmt.Errorf("lookup %q: %w: %w", name, ErrNotFound, err)
	}
	fi, err := os.Stat(filepath.Join(r.base, filepath.FromSlash(rel)))
	if err != nil {
		return File{}, fmt.Errorf("lookup %q: %w: %w", name, ErrNotFound, err)
	}
	if !fi.Mode().IsRegular() {
		return File{}, fmt.Errorf("lookup %q: %w: not a regular file", name, ErrNotFound)
	}
	return File{Name: rel}, nil
}

// Exact is Lookup restricted to files whose canonical name ends in Ext.
func (r *Resolver) Exact(name string) (File, error) {
	f, err := r.Lookup(name)
	if err != nil {
		return File{}, err
	}
	if !strings.HasSuffix(f.Name, Ext) {
		return File{}, fmt.Errorf("lookup %q: %w: resolves to %q", name, ErrNotFound, f.Name)
	}
	return f, nil
}

// Scan returns the files ending in Ext found recursively beneath dir, or
// beneath the base when dir is empty. The result is sorted by name and has no
// duplicates. A dir that does not exist or is not a directory yields an empty
// result. The only error returned is the context's.
func (r *Resolver) Scan(ctx context.Context, dir string) ([]File, error) {
	root := "."
	if dir != "" {
		root = dir
	}
	if !fs.ValidPath(root) {
		return nil, nil
	}
	fi, err := fs.Stat(r.fsys, root)
	if err != nil || !fi.IsDir() {
		return nil, nil
	}
	seen := make(map[string]bool)
	var result []File
	err = fs.WalkDir(r.fsys, root, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// unreadable entries are not candidates
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), Ext) {
			return nil
		}
		f, err := r.Lookup(p)
		if err != nil || !strings.HasSuffix(f.Name, Ext) || seen[f.Name] {
			return nil
		}
		seen[f.Name] = true
		result = append(result, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ReadFile returns the contents of f.
func (r *Resolver) ReadFile(f File) ([]byte, error) {
	b, err := fs.ReadFile(r.fsys, f.Name)
	if err != nil {
		return nil, fmt.Errorf("ReadFile: %w", err)
	}
	return b, nil
}

// contain canonicalizes p and returns it as a slash-separated path relative
// to the base.
func (r *Resolver) contain(p string) (string, error) {
	canon, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.base, canon)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ErrOutside
	}
	return filepath.ToSlash(rel), nil
}

// File is a file beneath the base directory.
type File struct {
	Name string // canonical slash-separated path relative to the base
}

// Dir returns the top-level directory holding the file, or "" for files
// directly in the base.
func (f File) Dir() string {
	d, _, ok := strings.Cut(f.Name, "/")
	if !ok {
		return ""
	}
	return d
}

// Title is the base name of the file without Ext.
func (f File) Title() string {
	return strings.TrimSuffix(path.Base(f.Name), Ext)
}

// Link is the URL path that requests this file in exact mode. Each segment
// is escaped, so names holding "?" or "#" still round-trip.
func (f File) Link() string {
	segs := strings.Split(strings.TrimSuffix(f.Name, Ext), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segs, "/")
}
