package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/affect/internal/engine"
	"github.com/lazypower/affect/internal/sink"
	"github.com/lazypower/affect/internal/store"
)

// Server is the affect HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	hub     *sink.Hub
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server. hub may be nil, in which case /api/stream
// reports 503.
func New(db *store.DB, eng *engine.Engine, hub *sink.Hub, version string) *Server {
	s := &Server{
		db:      db,
		engine:  eng,
		hub:     hub,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/events", s.handlePostEvent)
		r.Get("/events", s.handleListEvents)

		r.Get("/emotions", s.handleEmotions)
		r.Get("/desires", s.handleDesires)
		r.Get("/snapshots", s.handleSnapshots)

		r.Get("/modulation", s.handleListModulation)
		r.Get("/modulation/{row}", s.handleGetModulation)
		r.Put("/modulation/{row}", s.handlePutModulation)
		r.Delete("/modulation/{row}", s.handleDeleteModulation)

		r.Get("/stream", s.handleStream)
	})

	r.Get("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
		"engine":  s.engine.Running(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
