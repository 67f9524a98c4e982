package api

import (
	"net/http"

	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/services"
)

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.FlashcardService.ListFlashcards(r.Context(), 0, page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var in services.FlashcardInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.AddFlashcard(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleGetFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "flashcard")
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.GetFlashcard(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

// handleEditFlashcard replaces the flashcard's content. Its reviews start over.
func (s *Server) handleEditFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "flashcard")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var in services.FlashcardInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.EditFlashcard(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "flashcard")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.FlashcardService.DeleteFlashcard(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("flashcard %d deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
