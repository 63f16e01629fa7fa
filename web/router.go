package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires s behind the access log and panic recovery. Every path
// reaches s unmodified: paths are not cleaned, so traversal attempts are
// rejected by the segment check instead of being redirected.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/*", s.ServeHTTP)
	r.MethodNotAllowed(s.ServeHTTP)
	r.NotFound(s.ServeHTTP)

	return r
}
