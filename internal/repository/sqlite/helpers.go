package sqlite

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	apperrors "github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
)

// Helper functions shared across repository implementations

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

func tx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

// withinTx runs fn atomically. A repository already bound to a transaction
// joins it; one bound to the database opens its own.
func withinTx(ctx context.Context, ext sqlx.ExtContext, fn func(sqlx.ExtContext) error) error {
	if db, ok := ext.(*sqlx.DB); ok {
		return tx(ctx, db, func(t *sqlx.Tx) error { return fn(t) })
	}
	return fn(ext)
}

// paginate applies a page to a select. SQLite needs a LIMIT before an OFFSET.
func paginate(query squirrel.SelectBuilder, page models.Page) squirrel.SelectBuilder {
	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	} else if page.Offset > 0 {
		query = query.Limit(math.MaxInt64)
	}
	if page.Offset > 0 {
		query = query.Offset(uint64(page.Offset))
	}
	return query
}

func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

// translateError turns sqlite constraint failures into CONSTRAINT_VIOLATION
// errors and passes everything else through.
func translateError(entity string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	reason := "violates a constraint"
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		reason = "already exists"
	case sqlite3.ErrConstraintForeignKey:
		reason = "references a missing row"
	case sqlite3.ErrConstraintNotNull:
		reason = "is required"
	case sqlite3.ErrConstraintCheck:
		reason = "is invalid"
	}
	return apperrors.WrapConstraintError(constraintField(entity, sqliteErr.Error()), reason, err)
}

// constraintField extracts "decks.name" from "UNIQUE constraint failed: decks.name".
func constraintField(entity, msg string) string {
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		if field := strings.TrimSpace(msg[i+2:]); field != "" && !strings.Contains(field, " ") {
			return field
		}
	}
	return entity
}
