package services

import (
	"context"
	"strings"
	"time"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
)

// FlashcardInput is the editable content of a flashcard.
type FlashcardInput struct {
	Front      string `json:"front" validate:"required"`
	Back       string `json:"back" validate:"required"`
	Reversible bool   `json:"reversible"`
	DeckID     int64  `json:"deck_id" validate:"required"`
}

func (in *FlashcardInput) normalize() {
	in.Front = strings.TrimSpace(in.Front)
	in.Back = strings.TrimSpace(in.Back)
}

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	AddFlashcard(ctx context.Context, in FlashcardInput) (*models.Flashcard, error)
	EditFlashcard(ctx context.Context, id int64, in FlashcardInput) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id int64) error
	GetFlashcard(ctx context.Context, id int64) (*models.Flashcard, error)
	// ListFlashcards lists the flashcards of a deck and its sub-decks, or of
	// every deck when deckID is 0.
	ListFlashcards(ctx context.Context, deckID int64, page models.Page) ([]models.Flashcard, error)
}

type flashcardService struct {
	store repository.Store
	now   func() time.Time
}

// NewFlashcardService creates a new FlashcardService
func NewFlashcardService(store repository.Store) FlashcardService {
	return &flashcardService{store: store, now: time.Now}
}

// AddFlashcard stores the flashcard together with one review per direction.
func (s *flashcardService) AddFlashcard(ctx context.Context, in FlashcardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	in.normalize()
	log.Debug("adding flashcard: deck_id=%d, reversible=%t", in.DeckID, in.Reversible)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var card *models.Flashcard
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		now := s.now()
		var err error
		card, err = repos.Flashcards().Add(ctx, models.Flashcard{
			Front:         in.Front,
			Back:          in.Back,
			Reversible:    in.Reversible,
			DeckID:        in.DeckID,
			CreatedAt:     now,
			LastUpdatedAt: now,
		})
		if err != nil {
			return err
		}
		return addReviews(ctx, repos, *card, now)
	})
	if err != nil {
		log.Debug("failed to add flashcard: %v", err)
		return nil, wrapError(err)
	}
	log.Info("flashcard added: id=%d, deck_id=%d", card.ID, card.DeckID)
	return card, nil
}

// EditFlashcard updates the flashcard and starts its schedule over with a
// fresh set of reviews matching Reversible.
func (s *flashcardService) EditFlashcard(ctx context.Context, id int64, in FlashcardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	in.normalize()
	log.Debug("editing flashcard: id=%d", id)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var card *models.Flashcard
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		current, err := repos.Flashcards().Get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return errors.NewNotFoundError("flashcard", id)
		}

		now := s.now()
		err = repos.Flashcards().Update(ctx, id, repository.Patch{
			"front":           in.Front,
			"back":            in.Back,
			"reversible":      in.Reversible,
			"deck_id":         in.DeckID,
			"last_updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := repos.Reviews().DeleteByFlashcard(ctx, id); err != nil {
			return err
		}
		card, err = repos.Flashcards().Get(ctx, id)
		if err != nil {
			return err
		}
		return addReviews(ctx, repos, *card, now)
	})
	if err != nil {
		log.Debug("failed to edit flashcard %d: %v", id, err)
		return nil, wrapError(err)
	}
	return card, nil
}

func addReviews(ctx context.Context, repos repository.Repositories, card models.Flashcard, now time.Time) error {
	for _, dir := range card.Directions() {
		if _, err := repos.Reviews().Add(ctx, models.NewReview(card.ID, dir, now)); err != nil {
			return err
		}
	}
	return nil
}

func (s *flashcardService) DeleteFlashcard(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting flashcard: id=%d", id)

	if _, err := s.GetFlashcard(ctx, id); err != nil {
		return err
	}
	if err := s.store.Flashcards().Delete(ctx, id); err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return wrapError(err)
	}
	return nil
}

func (s *flashcardService) GetFlashcard(ctx context.Context, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting flashcard: id=%d", id)

	card, err := s.store.Flashcards().Get(ctx, id)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, wrapError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return card, nil
}

func (s *flashcardService) ListFlashcards(ctx context.Context, deckID int64, page models.Page) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing flashcards: deck_id=%d, limit=%d, offset=%d", deckID, page.Limit, page.Offset)

	var (
		decks []models.Deck
		err   error
	)
	if deckID == 0 {
		decks, err = s.store.Decks().GetAll(ctx)
	} else {
		decks, err = s.store.Decks().GetWithSubdecks(ctx, deckID)
		if err == nil && len(decks) == 0 {
			return nil, errors.NewNotFoundError("deck", deckID)
		}
	}
	if err != nil {
		return nil, wrapError(err)
	}

	cards, err := s.store.Flashcards().GetByDecks(ctx, models.DeckIDs(decks), page)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, wrapError(err)
	}
	return cards, nil
}
