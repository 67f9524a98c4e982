package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/repository"
)

// table describes how one entity kind maps onto its table.
type table[T any] struct {
	name    string
	entity  string
	columns []string
	// mutable lists the columns Update accepts.
	mutable map[string]bool
	orderBy []string
	// touch stamps last_updated_at on every update that does not set it.
	touch bool
	// values returns the insert values for an entity.
	values func(T) map[string]any
}

// crudRepository implements repository.Repository for any table. Entity
// repositories embed it and add their own queries.
type crudRepository[T any] struct {
	db sqlx.ExtContext
	t  table[T]
}

func newCrudRepository[T any](db sqlx.ExtContext, t table[T]) *crudRepository[T] {
	return &crudRepository[T]{db: db, t: t}
}

func (r *crudRepository[T]) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).WithPrefix(r.t.entity + "_repo")
}

func (r *crudRepository[T]) Add(ctx context.Context, entity T) (*T, error) {
	log := r.log(ctx)
	log.Debug("adding %s", r.t.entity)

	query, args, err := sqlBuilder.Insert(r.t.name).SetMap(r.t.values(entity)).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Debug("failed to insert %s: %v", r.t.entity, err)
		return nil, translateError(r.t.entity, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get %s id: %v", r.t.entity, err)
		return nil, err
	}
	log.Debug("%s added: id=%d", r.t.entity, id)
	return r.Get(ctx, id)
}

func (r *crudRepository[T]) Get(ctx context.Context, id int64) (*T, error) {
	log := r.log(ctx)
	log.Debug("getting %s: id=%d", r.t.entity, id)

	query, args, err := r.selectAll().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	var out T
	if err := sqlx.GetContext(ctx, r.db, &out, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("%s not found: id=%d", r.t.entity, id)
			return nil, nil
		}
		log.Error("failed to get %s: %v", r.t.entity, err)
		return nil, err
	}
	return &out, nil
}

func (r *crudRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.selectMany(ctx, r.selectAll().OrderBy(r.t.orderBy...))
}

func (r *crudRepository[T]) Update(ctx context.Context, id int64, patch repository.Patch) error {
	log := r.log(ctx)
	if len(patch) == 0 {
		return nil
	}

	set := make(map[string]any, len(patch)+1)
	for col, v := range patch {
		if !r.t.mutable[col] {
			return fmt.Errorf("%s: column %q cannot be updated", r.t.name, col)
		}
		set[col] = v
	}
	if _, ok := set["last_updated_at"]; r.t.touch && !ok {
		set["last_updated_at"] = time.Now()
	}
	log.Debug("updating %s: id=%d, columns=%d", r.t.entity, id, len(set))

	query, args, err := sqlBuilder.Update(r.t.name).SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Debug("failed to update %s: %v", r.t.entity, err)
		return translateError(r.t.entity, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Debug("%s not found, update ignored: id=%d", r.t.entity, id)
	}
	return nil
}

func (r *crudRepository[T]) Delete(ctx context.Context, id int64) error {
	return r.deleteWhere(ctx, r.db, squirrel.Eq{"id": id})
}

func (r *crudRepository[T]) deleteWhere(ctx context.Context, db sqlx.ExecerContext, pred squirrel.Sqlizer) error {
	log := r.log(ctx)
	query, args, err := sqlBuilder.Delete(r.t.name).Where(pred).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete %s: %v", r.t.entity, err)
		return translateError(r.t.entity, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Debug("deleted %d %s row(s)", n, r.t.entity)
	}
	return nil
}

func (r *crudRepository[T]) selectAll() squirrel.SelectBuilder {
	return sqlBuilder.Select(r.t.columns...).From(r.t.name)
}

// selectMany runs a select and scans every row. It never returns a nil slice.
func (r *crudRepository[T]) selectMany(ctx context.Context, query squirrel.SelectBuilder) ([]T, error) {
	log := r.log(ctx)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	out := []T{}
	if err := sqlx.SelectContext(ctx, r.db, &out, sqlStr, args...); err != nil {
		log.Error("failed to query %s rows: %v", r.t.entity, err)
		return nil, err
	}
	log.Debug("found %d %s rows", len(out), r.t.entity)
	return out, nil
}

// selectOne is Get for an arbitrary predicate.
func (r *crudRepository[T]) selectOne(ctx context.Context, query squirrel.SelectBuilder) (*T, error) {
	rows, err := r.selectMany(ctx, query.Limit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}
