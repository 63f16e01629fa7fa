package web

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ancientlore/htmlroulette/resolve"
	"github.com/ancientlore/htmlroulette/site"
)

//go:embed default.html
var defaultTemplate string

// Server serves HTML files from a resolver in random, exact, or listing mode.
// It is safe for concurrent use.
type Server struct {
	res     *resolve.Resolver
	tpl     *template.Template
	title   string
	expires time.Duration
	intn    func(n int) int
}

// New returns a Server for res. cfg may be nil. When cfg names a templates
// directory, its *.html files are parsed after the built-in templates and
// override any they redefine.
func New(res *resolve.Resolver, cfg *site.Config) (*Server, error) {
	if cfg == nil {
		cfg = &site.Config{}
	}
	tpl, err := loadTemplates(cfg.Templates)
	if err != nil {
		return nil, err
	}
	s := &Server{
		res:     res,
		tpl:     tpl,
		title:   cfg.Title,
		expires: time.Duration(cfg.Expires),
		intn:    rand.Intn,
	}
	if s.title == "" {
		s.title = site.DefaultTitle
	}
	return s, nil
}

// loadTemplates parses the built-in templates and then the overrides in dir.
func loadTemplates(dir string) (*template.Template, error) {
	tpl, err := template.New("htmlroulette").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	if dir == "" {
		return tpl, nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("loadTemplates: %q is not a directory", dir)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	if len(matches) == 0 {
		return tpl, nil
	}
	tpl, err = tpl.ParseFiles(matches...)
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	return tpl, nil
}

// DefinedTemplates lists the templates the server renders with.
func (s *Server) DefinedTemplates() string {
	return s.tpl.DefinedTemplates()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.serveError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	req, err := ParseRequest(r.URL)
	if err != nil {
		s.serveError(w, http.StatusBadRequest, "Invalid path")
		return
	}
	switch req.Mode() {
	case ModeList:
		s.serveListing(w, r, req.Filter())
	case ModeExact:
		s.serveExact(w, req.Name())
	default:
		s.serveRandom(w, r, req.Filter())
	}
}

// serveRandom picks one file uniformly from the current scan of filter.
func (s *Server) serveRandom(w http.ResponseWriter, r *http.Request, filter string) {
	files, err := s.res.Scan(r.Context(), filter)
	if err != nil {
		// the client went away
		log.Printf("serveRandom: %s", err)
		return
	}
	if len(files) == 0 {
		s.render(w, http.StatusNotFound, "notfound", struct{ Filter string }{filter})
		return
	}
	s.serveFile(w, files[s.intn(len(files))], 0)
}

// serveExact serves the named file if it resolves.
func (s *Server) serveExact(w http.ResponseWriter, name string) {
	f, err := s.res.Exact(name)
	if errors.Is(err, resolve.ErrNotFound) {
		s.serveError(w, http.StatusNotFound, "File not found")
		return
	} else if err != nil {
		log.Printf("serveExact: %s", err)
		s.serveError(w, http.StatusInternalServerError, "Failed to resolve file")
		return
	}
	s.serveFile(w, f, s.expires)
}

// serveFile writes the bytes of f. A non-zero expiry adds an Expires header.
func (s *Server) serveFile(w http.ResponseWriter, f resolve.File, expiry time.Duration) {
	b, err := s.res.ReadFile(f)
	if err != nil {
		log.Printf("serveFile: %s", err)
		s.serveError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	if expiry != 0 {
		setExpires(w.Header(), expiry)
	}
	writeHTML(w, http.StatusOK, b)
}

// serveListing renders the listing page for filter.
func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, filter string) {
	files, err := s.res.Scan(r.Context(), filter)
	if err != nil {
		log.Printf("serveListing: %s", err)
		return
	}
	page := listing{
		Title:  s.title,
		Filter: filter,
		Groups: groupFiles(files),
	}
	if filter != "" {
		page.Title += " — " + filter
	}
	front, intro := s.intro(filter)
	if front != nil && front.Title != "" {
		page.Title = front.Title
	}
	page.Intro = intro
	s.render(w, http.StatusOK, "listing", page)
}

// intro renders the README.md of the listed directory, if it has one.
func (s *Server) intro(dir string) (*site.FrontMatter, template.HTML) {
	f, err := s.res.Lookup(path.Join(dir, site.IntroFile))
	if err != nil {
		return nil, ""
	}
	b, err := s.res.ReadFile(f)
	if err != nil {
		log.Printf("intro: %s", err)
		return nil, ""
	}
	front, md, err := site.RenderMarkdown(b)
	if err != nil {
		log.Printf("intro: %s", err)
		return nil, ""
	}
	return front, md
}

// errData is passed to the error template.
type errData struct {
	Status  int
	Message string
}

// serveError renders the error page for status.
func (s *Server) serveError(w http.ResponseWriter, status int, msg string) {
	s.render(w, status, "error", errData{Status: status, Message: msg})
}

// render executes the named template and writes it with status.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var out bytes.Buffer
	err := s.tpl.ExecuteTemplate(&out, name, data)
	if err != nil {
		log.Printf("render: %s", err)
		out.Reset()
		status = http.StatusInternalServerError
		fmt.Fprintf(&out, "<h1>%d %s</h1>", status, http.StatusText(status))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeHTML(w, status, out.Bytes())
}

// writeHTML writes b as UTF-8 HTML with an exact Content-Length.
func writeHTML(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(status)
	_, err := w.Write(b)
	if err != nil {
		log.Printf("writeHTML: %s", err)
	}
}
