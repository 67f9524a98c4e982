// Package transfer moves flashcards and whole collections in and out of the
// store as CSV, XLSX or ZIP backups.
package transfer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/memotica/memotica/internal/repository"
	"github.com/memotica/memotica/internal/services"
)

// Format is a flashcard file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// flashcardColumns is the layout of flashcard exports.
var flashcardColumns = []string{"front", "back", "reversible", "deck"}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed    int      `json:"total_processed"`
	DecksCreated      int      `json:"decks_created"`
	FlashcardsCreated int      `json:"flashcards_created"`
	Skipped           int      `json:"skipped"`
	Errors            []string `json:"errors"`
}

func (r *ImportResult) skip(row int, format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %s", row, fmt.Sprintf(format, args...)))
}

// BackupCounts counts the rows in a backup.
type BackupCounts struct {
	Decks      int `json:"decks"`
	Flashcards int `json:"flashcards"`
	Reviews    int `json:"reviews"`
}

// Service imports and exports data.
type Service struct {
	store      repository.Store
	decks      services.DeckService
	flashcards services.FlashcardService
}

// NewService creates a transfer Service. Flashcard imports go through the
// services so that every imported card gets its reviews.
func NewService(store repository.Store, decks services.DeckService, flashcards services.FlashcardService) *Service {
	return &Service{store: store, decks: decks, flashcards: flashcards}
}
