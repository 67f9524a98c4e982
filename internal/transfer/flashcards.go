package transfer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/services"
)

// ExportFlashcards writes every flashcard with the name of its deck and
// returns how many were written.
func (s *Service) ExportFlashcards(ctx context.Context, w io.Writer, format Format) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer")

	decks, err := s.store.Decks().GetAll(ctx)
	if err != nil {
		return 0, err
	}
	names := make(map[int64]string, len(decks))
	for _, d := range decks {
		names[d.ID] = d.Name
	}

	cards, err := s.store.Flashcards().GetAll(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(cards)+1)
	rows = append(rows, flashcardColumns)
	for _, c := range cards {
		rows = append(rows, []string{c.Front, c.Back, formatBool(c.Reversible), names[c.DeckID]})
	}

	switch format {
	case FormatCSV:
		err = writeCSV(w, rows)
	case FormatXLSX:
		err = writeXLSX(w, rows)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		log.Error("failed to export flashcards: %v", err)
		return 0, err
	}
	log.Info("exported %d flashcards as %s", len(cards), format)
	return len(cards), nil
}

// ImportFlashcards reads front, back, reversible and deck columns. Decks are
// looked up by name and created when missing. Rows that cannot be imported
// are skipped and reported in the result.
func (s *Service) ImportFlashcards(ctx context.Context, r io.Reader, format Format) (*ImportResult, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer")

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}
	if len(rows) == 0 {
		return nil, errors.NewBadRequestError("file is empty")
	}

	h := newHeader(rows[0])
	if err := h.require("front", "back", "deck"); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	result := &ImportResult{Errors: make([]string, 0)}
	deckIDs := map[string]int64{}

	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		result.TotalProcessed++

		deckName := strings.TrimSpace(h.get(row, "deck"))
		if deckName == "" {
			result.skip(line, "deck is empty")
			continue
		}
		reversible, err := parseBool(h.get(row, "reversible"))
		if err != nil {
			result.skip(line, "invalid reversible value %q", h.get(row, "reversible"))
			continue
		}

		deckID, ok := deckIDs[deckName]
		if !ok {
			deckID, err = s.resolveDeck(ctx, deckName, result)
			if err != nil {
				if errors.IsConstraintViolation(err) {
					result.skip(line, "%v", err)
					continue
				}
				return result, err
			}
			deckIDs[deckName] = deckID
		}

		_, err = s.flashcards.AddFlashcard(ctx, services.FlashcardInput{
			Front:      h.get(row, "front"),
			Back:       h.get(row, "back"),
			Reversible: reversible,
			DeckID:     deckID,
		})
		if err != nil {
			if errors.IsConstraintViolation(err) {
				result.skip(line, "%v", err)
				continue
			}
			return result, err
		}
		result.FlashcardsCreated++
	}

	log.Info("imported %d flashcards into %d new decks, skipped %d rows",
		result.FlashcardsCreated, result.DecksCreated, result.Skipped)
	return result, nil
}

func (s *Service) resolveDeck(ctx context.Context, name string, result *ImportResult) (int64, error) {
	deck, err := s.decks.GetDeckByName(ctx, name)
	if err == nil {
		return deck.ID, nil
	}
	if !errors.IsNotFound(err) {
		return 0, err
	}
	deck, err = s.decks.AddDeck(ctx, services.DeckInput{Name: name})
	if err != nil {
		return 0, err
	}
	result.DecksCreated++
	return deck.ID, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

