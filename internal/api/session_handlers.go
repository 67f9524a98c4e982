package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/flashcard"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/review"
)

// activeSession is the one review session the server drives. Starting a
// new session replaces it.
type activeSession struct {
	id      uuid.UUID
	deckID  int64
	session *review.Session
}

type startSessionRequest struct {
	DeckID int64 `json:"deck_id" validate:"required,gt=0"`
}

// scoreRequest carries either a numeric quality or one of the answer buttons.
type scoreRequest struct {
	Quality *int   `json:"quality" validate:"omitempty,gte=0,lte=5"`
	Answer  string `json:"answer" validate:"omitempty,oneof=wrong good easy"`
}

func (req scoreRequest) quality() (int, error) {
	if err := validateBody(req); err != nil {
		return 0, err
	}
	switch {
	case req.Quality != nil && req.Answer != "":
		return 0, errors.NewBadRequestError("send either quality or answer, not both")
	case req.Quality != nil:
		return *req.Quality, nil
	case req.Answer != "":
		return flashcard.ParseAnswer(req.Answer)
	default:
		return 0, errors.NewBadRequestError("quality or answer is required")
	}
}

type cardView struct {
	ReviewID    int64            `json:"review_id"`
	FlashcardID int64            `json:"flashcard_id"`
	Direction   models.Direction `json:"direction"`
	Front       string           `json:"front"`
	Back        string           `json:"back,omitempty"`
}

type sessionView struct {
	ID     string       `json:"id"`
	DeckID int64        `json:"deck_id"`
	State  string       `json:"state"`
	Card   *cardView    `json:"card,omitempty"`
	Stats  review.Stats `json:"stats"`
}

func (a *activeSession) view() sessionView {
	v := sessionView{
		ID:     a.id.String(),
		DeckID: a.deckID,
		State:  a.session.State().String(),
		Stats:  a.session.Stats(),
	}
	current, err := a.session.Current()
	if err != nil {
		return v
	}
	front, _ := a.session.CurrentFront()
	v.Card = &cardView{
		ReviewID:    current.ID,
		FlashcardID: current.FlashcardID,
		Direction:   current.Direction,
		Front:       front,
	}
	if back, err := a.session.CurrentBack(); err == nil {
		v.Card.Back = back
	}
	return v
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateBody(req); err != nil {
		handleError(w, r, err)
		return
	}

	sess, err := s.ReviewService.StartSession(r.Context(), req.DeckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	active := &activeSession{id: uuid.New(), deckID: req.DeckID, session: sess}

	s.mu.Lock()
	if s.active != nil {
		logger.FromContext(r.Context()).Info("replacing review session %s", s.active.id)
		s.active.session.Abort()
	}
	s.active = active
	view := active.view()
	s.mu.Unlock()

	logger.FromContext(r.Context()).Info("review session %s started: deck_id=%d, cards=%d",
		active.id, req.DeckID, view.Stats.Remaining)
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*activeSession) error { return nil })
}

func (s *Server) handleRevealCard(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(a *activeSession) error {
		return sessionError(a.session.Reveal())
	})
}

func (s *Server) handleScoreCard(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	req.Answer = strings.ToLower(strings.TrimSpace(req.Answer))
	quality, err := req.quality()
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.withSession(w, r, func(a *activeSession) error {
		return sessionError(a.session.Score(r.Context(), quality))
	})
}

func (s *Server) handleAbortSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	a, err := s.lookupSession(id)
	if err != nil {
		s.mu.Unlock()
		handleError(w, r, err)
		return
	}
	a.session.Abort()
	s.active = nil
	view := a.view()
	s.mu.Unlock()

	logger.FromContext(r.Context()).Info("review session %s aborted after %d scores", a.id, view.Stats.Scored)
	writeJSON(w, r, http.StatusOK, view)
}

// withSession runs fn on the active session named in the URL while holding
// the session lock and answers with the session's new state.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*activeSession) error) {
	s.mu.Lock()
	a, err := s.lookupSession(chi.URLParam(r, "id"))
	if err == nil {
		err = fn(a)
	}
	var view sessionView
	if err == nil {
		view = a.view()
	}
	s.mu.Unlock()

	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// lookupSession must be called with s.mu held.
func (s *Server) lookupSession(raw string) (*activeSession, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.NewBadRequestError("invalid session ID")
	}
	if s.active == nil || s.active.id != id {
		return nil, errors.NewNotFoundError("review session", id)
	}
	return s.active, nil
}

func sessionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, review.ErrSessionEmpty):
		return errors.NewConflictError("the review session has no cards left")
	case errors.Is(err, review.ErrInvalidTransition):
		return errors.NewConflictError("the current card is not in a state that allows this action")
	default:
		return err
	}
}
