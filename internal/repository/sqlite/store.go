package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/memotica/memotica/internal/repository"
)

// Store is the SQLite implementation of repository.Store.
type Store struct {
	repositories
	db *sqlx.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	x := sqlx.NewDb(db, "sqlite3")
	return &Store{repositories: newRepositories(x), db: x}
}

func (s *Store) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return tx(ctx, s.db, func(t *sqlx.Tx) error {
		return fn(newRepositories(t))
	})
}

type repositories struct {
	decks      *deckRepository
	flashcards *flashcardRepository
	reviews    *reviewRepository
}

func newRepositories(db sqlx.ExtContext) repositories {
	return repositories{
		decks:      newDeckRepository(db),
		flashcards: newFlashcardRepository(db),
		reviews:    newReviewRepository(db),
	}
}

func (r repositories) Decks() repository.DeckRepository           { return r.decks }
func (r repositories) Flashcards() repository.FlashcardRepository { return r.flashcards }
func (r repositories) Reviews() repository.ReviewRepository       { return r.reviews }
