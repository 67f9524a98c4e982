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

var reviewTable = table[models.Review]{
	name:   "reviews",
	entity: "review",
	columns: []string{
		"id", "flashcard_id", "direction", "repetitions", "ef", "interval",
		"next_review", "created_at", "last_updated_at",
	},
	mutable: map[string]bool{
		"direction": true, "repetitions": true, "ef": true, "interval": true,
		"next_review": true, "last_updated_at": true,
	},
	orderBy: []string{"id"},
	touch:   true,
	values: func(r models.Review) map[string]any {
		now := time.Now()
		if r.Direction == "" {
			r.Direction = models.FrontToBack
		}
		if r.EF == 0 {
			r.EF = models.DefaultEasiness
		}
		if r.Interval == 0 {
			r.Interval = models.DefaultInterval
		}
		if r.NextReview.IsZero() {
			r.NextReview = models.NewDate(now)
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.LastUpdatedAt.IsZero() {
			r.LastUpdatedAt = r.CreatedAt
		}
		v := map[string]any{
			"flashcard_id":    r.FlashcardID,
			"direction":       string(r.Direction),
			"repetitions":     r.Repetitions,
			"ef":              r.EF,
			"interval":        r.Interval,
			"next_review":     r.NextReview,
			"created_at":      r.CreatedAt,
			"last_updated_at": r.LastUpdatedAt,
		}
		if r.ID != 0 {
			v["id"] = r.ID
		}
		return v
	},
}

type reviewRepository struct {
	*crudRepository[models.Review]
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return newReviewRepository(sqlx.NewDb(db, "sqlite3"))
}

func newReviewRepository(db sqlx.ExtContext) *reviewRepository {
	return &reviewRepository{newCrudRepository(db, reviewTable)}
}

func (r *reviewRepository) GetByFlashcard(ctx context.Context, flashcardID int64) ([]models.Review, error) {
	r.log(ctx).Debug("fetching reviews: flashcard_id=%d", flashcardID)
	return r.selectMany(ctx, r.selectAll().
		Where(squirrel.Eq{"flashcard_id": flashcardID}).
		OrderBy("id"))
}

func (r *reviewRepository) GetByDeck(ctx context.Context, deckID int64) ([]models.Review, error) {
	r.log(ctx).Debug("fetching reviews: deck_id=%d", deckID)
	return r.selectMany(ctx, r.selectByDeck(deckID).OrderBy("r.id"))
}

func (r *reviewRepository) GetPending(ctx context.Context, deckID int64, today models.Date) ([]models.Review, error) {
	r.log(ctx).Debug("fetching pending reviews: deck_id=%d, today=%s", deckID, today)
	return r.selectMany(ctx, r.selectByDeck(deckID).
		Where(squirrel.LtOrEq{"r.next_review": today.String()}).
		OrderBy("r.ef", "r.interval", "r.next_review", "r.id"))
}

func (r *reviewRepository) DeleteByFlashcard(ctx context.Context, flashcardID int64) error {
	r.log(ctx).Debug("deleting reviews: flashcard_id=%d", flashcardID)
	return r.deleteWhere(ctx, r.db, squirrel.Eq{"flashcard_id": flashcardID})
}

func (r *reviewRepository) selectByDeck(deckID int64) squirrel.SelectBuilder {
	return sqlBuilder.Select(qualify("r", reviewTable.columns)...).
		From("reviews r").
		Join("flashcards f ON f.id = r.flashcard_id").
		Where(squirrel.Eq{"f.deck_id": deckID})
}
