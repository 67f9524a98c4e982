package services

import (
	"context"
	"time"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/flashcard"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
	"github.com/memotica/memotica/internal/review"
)

// ScheduleInput is one step of the scheduler.
type ScheduleInput struct {
	Repetitions int     `json:"repetitions" validate:"gte=0"`
	EF          float64 `json:"ef" validate:"gte=1.3"`
	Interval    int     `json:"interval" validate:"gte=0"`
	Quality     int     `json:"quality" validate:"gte=0,lte=5"`
}

// ScheduleResult is the scheduler's answer for a ScheduleInput.
type ScheduleResult struct {
	Repetitions int     `json:"repetitions"`
	EF          float64 `json:"ef"`
	Interval    int     `json:"interval"`
}

// ReviewService handles review scheduling and sessions
type ReviewService interface {
	// ListDueReviews returns the due reviews of a deck and its sub-decks with
	// their flashcards attached, deck by deck in traversal order.
	ListDueReviews(ctx context.Context, deckID int64) ([]models.Review, error)
	StartSession(ctx context.Context, deckID int64) (*review.Session, error)
	// ResetReviews replaces the reviews of every flashcard below the deck with
	// fresh ones due today and returns how many were created.
	ResetReviews(ctx context.Context, deckID int64) (int, error)
	DeckStats(ctx context.Context, deckID int64) (*models.DeckStats, error)
	Schedule(in ScheduleInput) (*ScheduleResult, error)
}

// ReviewServiceOption configures a ReviewService.
type ReviewServiceOption func(*reviewService)

// WithServiceClock replaces time.Now for due dates and new sessions.
func WithServiceClock(now func() time.Time) ReviewServiceOption {
	return func(s *reviewService) {
		s.now = now
	}
}

type reviewService struct {
	store repository.Store
	now   func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(store repository.Store, opts ...ReviewServiceOption) ReviewService {
	s := &reviewService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reviewService) ListDueReviews(ctx context.Context, deckID int64) ([]models.Review, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing due reviews: deck_id=%d", deckID)

	decks, err := s.subtree(ctx, deckID)
	if err != nil {
		return nil, err
	}

	today := models.NewDate(s.now())
	cards := map[int64]*models.Flashcard{}
	due := []models.Review{}
	for _, deck := range decks {
		pending, err := s.store.Reviews().GetPending(ctx, deck.ID, today)
		if err != nil {
			log.Error("failed to get pending reviews for deck %d: %v", deck.ID, err)
			return nil, wrapError(err)
		}
		for _, r := range pending {
			card, ok := cards[r.FlashcardID]
			if !ok {
				card, err = s.store.Flashcards().Get(ctx, r.FlashcardID)
				if err != nil {
					return nil, wrapError(err)
				}
				cards[r.FlashcardID] = card
			}
			r.Flashcard = card
			due = append(due, r)
		}
	}
	log.Debug("found %d due reviews across %d decks", len(due), len(decks))
	return due, nil
}

func (s *reviewService) StartSession(ctx context.Context, deckID int64) (*review.Session, error) {
	due, err := s.ListDueReviews(ctx, deckID)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("starting review session: deck_id=%d, reviews=%d", deckID, len(due))
	return review.New(due, s.store.Reviews(), review.WithClock(s.now)), nil
}

func (s *reviewService) ResetReviews(ctx context.Context, deckID int64) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("resetting reviews: deck_id=%d", deckID)

	created := 0
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		decks, err := repos.Decks().GetWithSubdecks(ctx, deckID)
		if err != nil {
			return err
		}
		if len(decks) == 0 {
			return errors.NewNotFoundError("deck", deckID)
		}
		cards, err := repos.Flashcards().GetByDecks(ctx, models.DeckIDs(decks), models.Page{})
		if err != nil {
			return err
		}
		now := s.now()
		for _, card := range cards {
			if err := repos.Reviews().DeleteByFlashcard(ctx, card.ID); err != nil {
				return err
			}
			if err := addReviews(ctx, repos, card, now); err != nil {
				return err
			}
			created += len(card.Directions())
		}
		return nil
	})
	if err != nil {
		log.Debug("failed to reset reviews for deck %d: %v", deckID, err)
		return 0, wrapError(err)
	}
	log.Info("reviews reset: deck_id=%d, reviews=%d", deckID, created)
	return created, nil
}

func (s *reviewService) DeckStats(ctx context.Context, deckID int64) (*models.DeckStats, error) {
	decks, err := s.subtree(ctx, deckID)
	if err != nil {
		return nil, err
	}

	today := models.NewDate(s.now())
	stats := &models.DeckStats{DeckID: deckID, TotalDecks: len(decks)}
	cards, err := s.store.Flashcards().GetByDecks(ctx, models.DeckIDs(decks), models.Page{})
	if err != nil {
		return nil, wrapError(err)
	}
	stats.TotalCards = len(cards)
	for _, deck := range decks {
		reviews, err := s.store.Reviews().GetByDeck(ctx, deck.ID)
		if err != nil {
			return nil, wrapError(err)
		}
		for _, r := range reviews {
			stats.Add(r, today)
		}
	}
	return stats, nil
}

// Schedule runs one scheduler step, rejecting out-of-range input instead of
// panicking.
func (s *reviewService) Schedule(in ScheduleInput) (*ScheduleResult, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	reps, ef, interval := flashcard.Schedule(in.Repetitions, in.EF, in.Interval, in.Quality)
	return &ScheduleResult{Repetitions: reps, EF: ef, Interval: interval}, nil
}

func (s *reviewService) subtree(ctx context.Context, deckID int64) ([]models.Deck, error) {
	decks, err := s.store.Decks().GetWithSubdecks(ctx, deckID)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(decks) == 0 {
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	return decks, nil
}
