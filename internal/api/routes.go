package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleCreateDeck)
		r.Route("/decks/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Patch("/", s.handleUpdateDeck)
			r.Delete("/", s.handleDeleteDeck)
			r.Get("/subdecks", s.handleListSubdecks)
			r.Get("/flashcards", s.handleListDeckFlashcards)
			r.Get("/due", s.handleListDue)
			r.Get("/stats", s.handleDeckStats)
			r.Post("/reset", s.handleResetReviews)
		})

		r.Get("/flashcards", s.handleListFlashcards)
		r.Post("/flashcards", s.handleCreateFlashcard)
		r.Get("/flashcards/{id}", s.handleGetFlashcard)
		r.Put("/flashcards/{id}", s.handleEditFlashcard)
		r.Delete("/flashcards/{id}", s.handleDeleteFlashcard)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/reveal", s.handleRevealCard)
		r.Post("/sessions/{id}/score", s.handleScoreCard)
		r.Delete("/sessions/{id}", s.handleAbortSession)

		r.Post("/schedule", s.handleSchedule)
	})

	if len(s.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)
}
