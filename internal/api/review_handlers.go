package api

import (
	"net/http"

	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/services"
)

func (s *Server) handleListDue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	due, err := s.ReviewService.ListDueReviews(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, due)
}

func (s *Server) handleResetReviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	n, err := s.ReviewService.ResetReviews(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("reviews reset for deck %d: %d created", id, n)
	writeJSON(w, r, http.StatusOK, map[string]int{"reviews": n})
}

func (s *Server) handleDeckStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "deck")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.ReviewService.DeckStats(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// handleSchedule runs one scheduler step without touching stored reviews.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var in services.ScheduleInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	out, err := s.ReviewService.Schedule(in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}
