package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
)

var flashcardTable = table[models.Flashcard]{
	name:    "flashcards",
	entity:  "flashcard",
	columns: []string{"id", "front", "back", "reversible", "deck_id", "created_at", "last_updated_at"},
	mutable: map[string]bool{"front": true, "back": true, "reversible": true, "deck_id": true, "last_updated_at": true},
	orderBy: []string{"front", "id"},
	touch:   true,
	values: func(f models.Flashcard) map[string]any {
		now := time.Now()
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}
		if f.LastUpdatedAt.IsZero() {
			f.LastUpdatedAt = f.CreatedAt
		}
		v := map[string]any{
			"front":           f.Front,
			"back":            f.Back,
			"reversible":      f.Reversible,
			"deck_id":         f.DeckID,
			"created_at":      f.CreatedAt,
			"last_updated_at": f.LastUpdatedAt,
		}
		if f.ID != 0 {
			v["id"] = f.ID
		}
		return v
	},
}

type flashcardRepository struct {
	*crudRepository[models.Flashcard]
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return newFlashcardRepository(sqlx.NewDb(db, "sqlite3"))
}

func newFlashcardRepository(db sqlx.ExtContext) *flashcardRepository {
	return &flashcardRepository{newCrudRepository(db, flashcardTable)}
}

func (r *flashcardRepository) GetByDeck(ctx context.Context, deckID int64, page models.Page) ([]models.Flashcard, error) {
	return r.GetByDecks(ctx, []int64{deckID}, page)
}

func (r *flashcardRepository) GetByDecks(ctx context.Context, deckIDs []int64, page models.Page) ([]models.Flashcard, error) {
	r.log(ctx).Debug("fetching flashcards: decks=%v, limit=%d, offset=%d", deckIDs, page.Limit, page.Offset)
	if len(deckIDs) == 0 {
		return []models.Flashcard{}, nil
	}
	query := r.selectAll().
		Where(squirrel.Eq{"deck_id": deckIDs}).
		OrderBy(flashcardTable.orderBy...)
	return r.selectMany(ctx, paginate(query, page))
}
