package api

import (
	"net/http"

	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/services"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.DeckService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var in services.DeckInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.AddDeck(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.GetDeck(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var in services.DeckUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.UpdateDeck(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.DeckService.DeleteDeck(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("deck %d deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubdecks(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	decks, err := s.DeckService.ListSubdecks(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleListDeckFlashcards(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.FlashcardService.ListFlashcards(r.Context(), id, page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}
