package repository

import (
	"context"

	"github.com/memotica/memotica/internal/models"
)

// Patch is a partial update keyed by column name.
type Patch map[string]any

// Repository is the CRUD surface shared by every entity kind.
//
// Get returns nil, nil for unknown ids. Update and Delete on unknown ids are
// no-ops; callers that need to tell the difference look the entity up first.
type Repository[T any] interface {
	Add(ctx context.Context, entity T) (*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id int64, patch Patch) error
	Delete(ctx context.Context, id int64) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Repository[models.Deck]
	GetByName(ctx context.Context, name string) (*models.Deck, error)
	// GetWithSubdecks returns the deck and every deck below it, the deck first.
	GetWithSubdecks(ctx context.Context, id int64) ([]models.Deck, error)
}

// FlashcardRepository handles flashcard data access
type FlashcardRepository interface {
	Repository[models.Flashcard]
	GetByDeck(ctx context.Context, deckID int64, page models.Page) ([]models.Flashcard, error)
	GetByDecks(ctx context.Context, deckIDs []int64, page models.Page) ([]models.Flashcard, error)
}

// ReviewRepository handles review data access
type ReviewRepository interface {
	Repository[models.Review]
	GetByFlashcard(ctx context.Context, flashcardID int64) ([]models.Review, error)
	GetByDeck(ctx context.Context, deckID int64) ([]models.Review, error)
	// GetPending returns the deck's reviews due on or before today, least
	// entrenched first: ordered by ef, interval, then next_review.
	GetPending(ctx context.Context, deckID int64, today models.Date) ([]models.Review, error)
	DeleteByFlashcard(ctx context.Context, flashcardID int64) error
}

// Repositories groups the entity repositories that share one connection or transaction.
type Repositories interface {
	Decks() DeckRepository
	Flashcards() FlashcardRepository
	Reviews() ReviewRepository
}

// Store hands out repositories and runs multi-step work atomically.
type Store interface {
	Repositories
	// WithTx runs fn with repositories bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repositories) error) error
}
