// Package server exposes furigana annotation over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/markdown"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	engine       *furigana.Engine
	markdown     *markdown.Annotator
	log          *slog.Logger
	maxBodyBytes int64
}

// New creates and configures the server. A non-positive maxBodyBytes uses
// DefaultMaxBodyBytes.
func New(engine *furigana.Engine, log *slog.Logger, maxBodyBytes int64) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		engine:       engine,
		markdown:     markdown.New(engine, log),
		log:          log,
		maxBodyBytes: maxBodyBytes,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/segment", s.handleSegment)
		r.Post("/annotate", s.handleAnnotate)
		r.Post("/matches", s.handleMatches)
		r.Get("/lookup/{char}", s.handleLookup)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"entries": s.engine.Store().Snapshot().Size(),
	})
}
