// Package web serves the smartdex JSON API.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conorfennell/smartdex/internal/quiz"
	"github.com/conorfennell/smartdex/internal/storage"
	"github.com/conorfennell/smartdex/internal/study"
	"github.com/conorfennell/smartdex/internal/sync"
)

// Options holds the defaults applied when a request leaves a value out.
type Options struct {
	StudyLimit int
	QuizCount  int
	QuizMode   quiz.Mode
	Sync       sync.Options
	// Location decides calendar days in statistics. Defaults to time.Local.
	Location *time.Location
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	db      *storage.DB
	study   *study.Service
	opts    Options
	router  chi.Router
	syncing chan struct{}
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, svc *study.Service, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	s := &Server{
		db:      db,
		study:   svc,
		opts:    opts,
		router:  chi.NewRouter(),
		syncing: make(chan struct{}, 1),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Post("/", s.handleCreateDeck)
		r.Route("/{deckID}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Delete("/", s.handleDeleteDeck)
			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleCreateCard)
			r.Get("/study", s.handleStudyQueue)
			r.Post("/quiz", s.handleCreateQuiz)
			r.Get("/quiz/results", s.handleQuizHistory)
			r.Post("/quiz/results", s.handleQuizResults)
		})
	})

	r.Delete("/cards/{cardID}", s.handleDeleteCard)
	r.Get("/cards/{cardID}/reviews", s.handleCardHistory)
	r.Post("/cards/{cardID}/review", s.handleReview)

	r.Get("/stats", s.handleStats)

	// Source management routes
	r.Get("/sources", s.handleListSources)
	r.Post("/sources", s.handleCreateSource)
	r.Delete("/sources/{sourceID}", s.handleDeleteSource)
	r.Post("/sync", s.handleSync)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
