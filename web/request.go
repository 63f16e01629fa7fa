package web

import (
	"errors"
	"net/url"
	"strings"

	"github.com/ancientlore/htmlroulette/resolve"
)

// ErrInvalidPath is returned by ParseRequest when a path segment is unsafe.
var ErrInvalidPath = errors.New("invalid path")

// Mode is the way a request is served.
type Mode int

const (
	ModeRandom Mode = iota // random file, optionally from one directory
	ModeExact              // one named file
	ModeList               // listing page
)

func (m Mode) String() string {
	switch m {
	case ModeRandom:
		return "random"
	case ModeExact:
		return "exact"
	case ModeList:
		return "list"
	}
	return "unknown"
}

// Request is a sanitized request URL.
type Request struct {
	Segments []string   // non-empty, safe path segments
	Query    url.Values // parsed query string
	List     bool       // the query has a "list" key
}

// ParseRequest splits the decoded path of u into segments and parses its
// query. If any segment is unsafe the whole path is rejected with
// ErrInvalidPath.
func ParseRequest(u *url.URL) (Request, error) {
	q := u.Query()
	req := Request{
		Query: q,
		List:  q.Has("list"),
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		if !safeSegment(seg) {
			return Request{Query: q, List: req.List}, ErrInvalidPath
		}
		req.Segments = append(req.Segments, seg)
	}
	return req, nil
}

// safeSegment reports whether seg can be used as a path element without
// escaping its parent.
func safeSegment(seg string) bool {
	switch {
	case seg == "", seg == ".", seg == "..":
		return false
	case strings.ContainsAny(seg, "\\\x00"):
		return false
	case strings.HasPrefix(seg, "/"), strings.HasPrefix(seg, "~"):
		return false
	}
	return true
}

// Mode classifies the request. Listing wins over everything, two or more
// segments name an exact file, and anything else is a random pick.
func (r Request) Mode() Mode {
	switch {
	case r.List:
		return ModeList
	case len(r.Segments) >= 2:
		return ModeExact
	}
	return ModeRandom
}

// Filter is the directory a random pick or listing is restricted to: the
// only segment when there is exactly one, otherwise "".
func (r Request) Filter() string {
	if len(r.Segments) == 1 {
		return r.Segments[0]
	}
	return ""
}

// Name is the file an exact request refers to, relative to the base.
func (r Request) Name() string {
	name := strings.Join(r.Segments, "/")
	if !strings.HasSuffix(name, resolve.Ext) {
		name += resolve.Ext
	}
	return name
}
