package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
)

var deckTable = table[models.Deck]{
	name:    "decks",
	entity:  "deck",
	columns: []string{"id", "name", "parent_id"},
	mutable: map[string]bool{"name": true, "parent_id": true},
	orderBy: []string{"name", "id"},
	values: func(d models.Deck) map[string]any {
		v := map[string]any{
			"name":      d.Name,
			"parent_id": d.ParentID,
		}
		if d.ID != 0 {
			v["id"] = d.ID
		}
		return v
	},
}

type deckRepository struct {
	*crudRepository[models.Deck]
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return newDeckRepository(sqlx.NewDb(db, "sqlite3"))
}

func newDeckRepository(db sqlx.ExtContext) *deckRepository {
	return &deckRepository{newCrudRepository(db, deckTable)}
}

func (r *deckRepository) GetByName(ctx context.Context, name string) (*models.Deck, error) {
	r.log(ctx).Debug("getting deck by name: %q", name)
	return r.selectOne(ctx, r.selectAll().Where(squirrel.Eq{"name": name}))
}

// GetWithSubdecks walks the deck forest breadth-first from id. The walk runs
// over an index built from one full scan and never visits a deck twice, so
// it ends even when parent links form a cycle.
func (r *deckRepository) GetWithSubdecks(ctx context.Context, id int64) ([]models.Deck, error) {
	log := r.log(ctx)
	log.Debug("getting deck with subdecks: id=%d", id)

	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Deck, len(all))
	children := make(map[int64][]int64)
	for _, d := range all {
		byID[d.ID] = d
		if d.ParentID != nil {
			children[*d.ParentID] = append(children[*d.ParentID], d.ID)
		}
	}

	out := []models.Deck{}
	if _, ok := byID[id]; !ok {
		log.Debug("deck not found: id=%d", id)
		return out, nil
	}

	visited := map[int64]bool{id: true}
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, byID[cur])
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}
	log.Debug("deck %d has %d subdecks", id, len(out)-1)
	return out, nil
}

// Delete turns the deck's children into roots and removes the deck. Its
// flashcards and their reviews go with it through the foreign keys.
func (r *deckRepository) Delete(ctx context.Context, id int64) error {
	log := r.log(ctx)
	log.Debug("deleting deck: id=%d", id)

	return withinTx(ctx, r.db, func(db sqlx.ExtContext) error {
		query, args, err := sqlBuilder.Update(deckTable.name).
			Set("parent_id", nil).
			Where(squirrel.Eq{"parent_id": id}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to reparent subdecks: %v", err)
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Debug("reparented %d subdecks of deck %d", n, id)
		}
		return r.deleteWhere(ctx, db, squirrel.Eq{"id": id})
	})
}
