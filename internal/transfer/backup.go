package transfer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
)

// Files in a backup archive, in restore order.
const (
	DecksFile      = "decks.csv"
	FlashcardsFile = "flashcards.csv"
	ReviewsFile    = "reviews.csv"
)

var backupFiles = []string{DecksFile, FlashcardsFile, ReviewsFile}

var (
	deckColumns   = []string{"id", "name", "parent_id"}
	cardColumns   = []string{"id", "front", "back", "reversible", "deck_id", "created_at", "last_updated_at"}
	reviewColumns = []string{"id", "flashcard_id", "direction", "repetitions", "ef", "interval", "next_review", "created_at", "last_updated_at"}
)

// BackupName is the file name ExportAll output is saved under on day t.
func BackupName(t time.Time) string {
	return fmt.Sprintf("memotica_%s.zip", models.NewDate(t))
}

// ExportAll writes a ZIP archive holding every deck, flashcard and review.
func (s *Service) ExportAll(ctx context.Context, w io.Writer) (*BackupCounts, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer")

	decks, err := s.store.Decks().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.Flashcards().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].ID < decks[j].ID })
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })

	tables := map[string][][]string{
		DecksFile:      {deckColumns},
		FlashcardsFile: {cardColumns},
		ReviewsFile:    {reviewColumns},
	}
	for _, d := range decks {
		parent := ""
		if d.ParentID != nil {
			parent = strconv.FormatInt(*d.ParentID, 10)
		}
		tables[DecksFile] = append(tables[DecksFile], []string{formatID(d.ID), d.Name, parent})
	}
	for _, c := range cards {
		tables[FlashcardsFile] = append(tables[FlashcardsFile], []string{
			formatID(c.ID), c.Front, c.Back, formatBool(c.Reversible), formatID(c.DeckID),
			c.CreatedAt.Format(timestampLayout), c.LastUpdatedAt.Format(timestampLayout),
		})
	}
	for _, r := range reviews {
		tables[ReviewsFile] = append(tables[ReviewsFile], []string{
			formatID(r.ID), formatID(r.FlashcardID), string(r.Direction), strconv.Itoa(r.Repetitions),
			strconv.FormatFloat(r.EF, 'f', -1, 64), strconv.Itoa(r.Interval), r.NextReview.String(),
			r.CreatedAt.Format(timestampLayout), r.LastUpdatedAt.Format(timestampLayout),
		})
	}

	zw := zip.NewWriter(w)
	for _, name := range backupFiles {
		fw, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if err := writeCSV(fw, tables[name]); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	result := &BackupCounts{Decks: len(decks), Flashcards: len(cards), Reviews: len(reviews)}
	log.Info("exported backup: decks=%d, flashcards=%d, reviews=%d", result.Decks, result.Flashcards, result.Reviews)
	return result, nil
}

// ImportAll restores a backup written by ExportAll, keeping row ids. The
// archive must hold exactly the three table files. Everything is restored in
// one transaction.
func (s *Service) ImportAll(ctx context.Context, path string) (*BackupCounts, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer")

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.NewBadRequestError(fmt.Sprintf("cannot open backup: %v", err))
	}
	defer zr.Close()

	tables, err := readBackup(&zr.Reader)
	if err != nil {
		return nil, err
	}

	result := &BackupCounts{}
	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := restoreDecks(ctx, repos, tables[DecksFile], result); err != nil {
			return fmt.Errorf("%s: %w", DecksFile, err)
		}
		if err := restoreFlashcards(ctx, repos, tables[FlashcardsFile], result); err != nil {
			return fmt.Errorf("%s: %w", FlashcardsFile, err)
		}
		if err := restoreReviews(ctx, repos, tables[ReviewsFile], result); err != nil {
			return fmt.Errorf("%s: %w", ReviewsFile, err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to restore backup: %v", err)
		return nil, err
	}
	log.Info("restored backup: decks=%d, flashcards=%d, reviews=%d", result.Decks, result.Flashcards, result.Reviews)
	return result, nil
}

func readBackup(zr *zip.Reader) (map[string][][]string, error) {
	if len(zr.File) != len(backupFiles) {
		return nil, errors.NewBadRequestError(fmt.Sprintf(
			"backup should contain %d files but contains %d", len(backupFiles), len(zr.File)))
	}

	tables := make(map[string][][]string, len(backupFiles))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		rows, err := readCSV(rc)
		rc.Close()
		if err != nil {
			return nil, errors.NewBadRequestError(fmt.Sprintf("%s: %v", f.Name, err))
		}
		tables[f.Name] = rows
	}
	for _, name := range backupFiles {
		rows, ok := tables[name]
		if !ok {
			return nil, errors.NewBadRequestError(fmt.Sprintf("backup is missing %s", name))
		}
		if len(rows) == 0 {
			return nil, errors.NewBadRequestError(fmt.Sprintf("%s has no header", name))
		}
	}
	return tables, nil
}

// restoreDecks inserts decks without parents first so that a deck may point
// at one listed after it, then links the parents.
func restoreDecks(ctx context.Context, repos repository.Repositories, rows [][]string, result *BackupCounts) error {
	h := newHeader(rows[0])
	if err := h.require("id", "name"); err != nil {
		return errors.NewBadRequestError(err.Error())
	}

	parents := map[int64]int64{}
	for i, row := range rows[1:] {
		deckID, err := parseID(h.get(row, "id"))
		if err != nil {
			return rowError(i, err)
		}
		if p := strings.TrimSpace(h.get(row, "parent_id")); p != "" {
			parentID, err := parseID(p)
			if err != nil {
				return rowError(i, err)
			}
			parents[deckID] = parentID
		}
		if _, err := repos.Decks().Add(ctx, models.Deck{ID: deckID, Name: h.get(row, "name")}); err != nil {
			return rowError(i, err)
		}
		result.Decks++
	}
	for deckID, parentID := range parents {
		if err := repos.Decks().Update(ctx, deckID, repository.Patch{"parent_id": parentID}); err != nil {
			return err
		}
	}
	return nil
}

func restoreFlashcards(ctx context.Context, repos repository.Repositories, rows [][]string, result *BackupCounts) error {
	h := newHeader(rows[0])
	if err := h.require(cardColumns[:5]...); err != nil {
		return errors.NewBadRequestError(err.Error())
	}

	for i, row := range rows[1:] {
		var card models.Flashcard
		var err error
		if card.ID, err = parseID(h.get(row, "id")); err != nil {
			return rowError(i, err)
		}
		if card.DeckID, err = parseID(h.get(row, "deck_id")); err != nil {
			return rowError(i, err)
		}
		if card.Reversible, err = parseBool(h.get(row, "reversible")); err != nil {
			return rowError(i, err)
		}
		if card.CreatedAt, err = parseTimestamp(h.get(row, "created_at")); err != nil {
			return rowError(i, err)
		}
		if card.LastUpdatedAt, err = parseTimestamp(h.get(row, "last_updated_at")); err != nil {
			return rowError(i, err)
		}
		card.Front = h.get(row, "front")
		card.Back = h.get(row, "back")

		if _, err := repos.Flashcards().Add(ctx, card); err != nil {
			return rowError(i, err)
		}
		result.Flashcards++
	}
	return nil
}

func restoreReviews(ctx context.Context, repos repository.Repositories, rows [][]string, result *BackupCounts) error {
	h := newHeader(rows[0])
	if err := h.require("id", "flashcard_id"); err != nil {
		return errors.NewBadRequestError(err.Error())
	}

	for i, row := range rows[1:] {
		r, err := parseReview(h, row)
		if err != nil {
			return rowError(i, err)
		}
		if _, err := repos.Reviews().Add(ctx, r); err != nil {
			return rowError(i, err)
		}
		result.Reviews++
	}
	return nil
}

// parseReview reads one review row. Missing schedule columns take the
// defaults of a new review.
func parseReview(h header, row []string) (models.Review, error) {
	var (
		r   models.Review
		err error
	)
	if r.ID, err = parseID(h.get(row, "id")); err != nil {
		return r, err
	}
	if r.FlashcardID, err = parseID(h.get(row, "flashcard_id")); err != nil {
		return r, err
	}
	if v := strings.TrimSpace(h.get(row, "direction")); v != "" {
		if r.Direction, err = models.ParseDirection(v); err != nil {
			return r, err
		}
	}
	if v := strings.TrimSpace(h.get(row, "repetitions")); v != "" {
		if r.Repetitions, err = strconv.Atoi(v); err != nil {
			return r, fmt.Errorf("invalid repetitions %q", v)
		}
	}
	if v := strings.TrimSpace(h.get(row, "ef")); v != "" {
		if r.EF, err = strconv.ParseFloat(v, 64); err != nil {
			return r, fmt.Errorf("invalid ef %q", v)
		}
	}
	if v := strings.TrimSpace(h.get(row, "interval")); v != "" {
		if r.Interval, err = strconv.Atoi(v); err != nil {
			return r, fmt.Errorf("invalid interval %q", v)
		}
	}
	if v := strings.TrimSpace(h.get(row, "next_review")); v != "" {
		if r.NextReview, err = models.ParseDate(v); err != nil {
			return r, err
		}
	}
	if r.CreatedAt, err = parseTimestamp(h.get(row, "created_at")); err != nil {
		return r, err
	}
	if r.LastUpdatedAt, err = parseTimestamp(h.get(row, "last_updated_at")); err != nil {
		return r, err
	}
	return r, nil
}

func rowError(i int, err error) error {
	// +2: one for the header, one for 1-based line numbers.
	return fmt.Errorf("row %d: %w", i+2, err)
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}

func formatID(v int64) string {
	return strconv.FormatInt(v, 10)
}
