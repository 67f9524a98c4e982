// Package review drives due reviews through a reveal-then-score loop.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/memotica/memotica/internal/flashcard"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
)

var (
	// ErrSessionEmpty is returned by calls that need a current card once the
	// session has run out of cards.
	ErrSessionEmpty = errors.New("review session is empty")
	// ErrInvalidTransition is returned when a call does not fit the current state,
	// such as scoring a card whose back has not been revealed.
	ErrInvalidTransition = errors.New("invalid review session transition")
)

// State is the position of a session in its reveal/score loop.
type State int

const (
	// Empty means there are no cards left. It is terminal.
	Empty State = iota
	// AwaitingReveal means the current card shows its front.
	AwaitingReveal
	// AwaitingScore means both faces are shown and a quality is expected.
	AwaitingScore
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case AwaitingReveal:
		return "awaiting-reveal"
	case AwaitingScore:
		return "awaiting-score"
	default:
		return "unknown"
	}
}

// Updater persists a scored review. repository.ReviewRepository satisfies it.
type Updater interface {
	Update(ctx context.Context, id int64, patch repository.Patch) error
}

// Stats counts what happened in a session so far.
type Stats struct {
	Scored    int `json:"scored"`
	Failed    int `json:"failed"`
	Retired   int `json:"retired"`
	Remaining int `json:"remaining"`
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now as the source of the review date.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is a FIFO queue of reviews. The head is taken off the queue when
// it is presented; a failed card goes back on the tail, a passed card leaves
// the session.
//
// A Session is not safe for concurrent use.
type Session struct {
	updater Updater
	now     func() time.Time

	queue   []models.Review
	current *models.Review
	state   State
	stats   Stats
}

// New builds a session over reviews in the given order. The slice is copied.
func New(reviews []models.Review, updater Updater, opts ...Option) *Session {
	s := &Session{
		updater: updater,
		now:     time.Now,
		queue:   append([]models.Review(nil), reviews...),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.advance()
	return s
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) IsEmpty() bool {
	return s.state == Empty
}

// Current returns a copy of the review being presented.
func (s *Session) Current() (models.Review, error) {
	if s.current == nil {
		return models.Review{}, ErrSessionEmpty
	}
	return *s.current, nil
}

// CurrentFront returns the face shown first for the current review.
func (s *Session) CurrentFront() (string, error) {
	if s.current == nil {
		return "", ErrSessionEmpty
	}
	front, _ := s.current.Faces()
	return front, nil
}

// CurrentBack returns the hidden face of the current review. It is only
// available after Reveal.
func (s *Session) CurrentBack() (string, error) {
	switch s.state {
	case Empty:
		return "", ErrSessionEmpty
	case AwaitingReveal:
		return "", ErrInvalidTransition
	}
	_, back := s.current.Faces()
	return back, nil
}

// Reveal shows the back of the current card.
func (s *Session) Reveal() error {
	switch s.state {
	case Empty:
		return ErrSessionEmpty
	case AwaitingScore:
		return ErrInvalidTransition
	}
	s.state = AwaitingScore
	return nil
}

// Score schedules the current review with quality, persists it and moves on
// to the next card. If persisting fails the session is left as it was.
//
// Quality must be in [0,5]; anything else panics in flashcard.Schedule.
func (s *Session) Score(ctx context.Context, quality int) error {
	switch s.state {
	case Empty:
		return ErrSessionEmpty
	case AwaitingReveal:
		return ErrInvalidTransition
	}

	log := logger.FromContext(ctx).WithPrefix("review_session")
	updated := flashcard.ApplyReview(*s.current, quality, s.now())
	log.Debug("scoring review: id=%d, quality=%d, interval=%d, next_review=%s",
		updated.ID, quality, updated.Interval, updated.NextReview)

	err := s.updater.Update(ctx, updated.ID, repository.Patch{
		"repetitions":     updated.Repetitions,
		"ef":              updated.EF,
		"interval":        updated.Interval,
		"next_review":     updated.NextReview,
		"last_updated_at": updated.LastUpdatedAt,
	})
	if err != nil {
		log.Error("failed to persist review %d: %v", updated.ID, err)
		return err
	}

	s.stats.Scored++
	if quality < flashcard.PassingQuality {
		s.stats.Failed++
		s.queue = append(s.queue, updated)
	} else {
		s.stats.Retired++
	}
	s.advance()
	log.Debug("review session now %s with %d remaining", s.state, s.Remaining())
	return nil
}

// Abort drops every unscored card. Scores already persisted stay.
func (s *Session) Abort() {
	s.queue = nil
	s.current = nil
	s.state = Empty
}

// Remaining counts the cards still to be scored, the current one included.
func (s *Session) Remaining() int {
	n := len(s.queue)
	if s.current != nil {
		n++
	}
	return n
}

func (s *Session) Stats() Stats {
	st := s.stats
	st.Remaining = s.Remaining()
	return st
}

func (s *Session) advance() {
	if len(s.queue) == 0 {
		s.current = nil
		s.state = Empty
		return
	}
	head := s.queue[0]
	s.queue = s.queue[1:]
	s.current = &head
	s.state = AwaitingReveal
}
