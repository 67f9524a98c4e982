package models

import (
	"fmt"
	"time"
)

// Direction is the face of a flashcard that is shown first.
type Direction string

const (
	FrontToBack Direction = "front-to-back"
	BackToFront Direction = "back-to-front"
)

func (d Direction) Valid() bool {
	return d == FrontToBack || d == BackToFront
}

// ParseDirection accepts the canonical names and the short forms used by older exports.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case string(FrontToBack), "ftb":
		return FrontToBack, nil
	case string(BackToFront), "btf":
		return BackToFront, nil
	default:
		return "", fmt.Errorf("unknown review direction %q", s)
	}
}

// Schedule defaults for a review that has never been answered.
const (
	DefaultEasiness = 2.5
	MinEasiness     = 1.3
	DefaultInterval = 1
)

// Review tracks the schedule of one direction of one flashcard.
type Review struct {
	ID            int64     `db:"id" json:"id"`
	FlashcardID   int64     `db:"flashcard_id" json:"flashcard_id"`
	Direction     Direction `db:"direction" json:"direction"`
	Repetitions   int       `db:"repetitions" json:"repetitions"`
	EF            float64   `db:"ef" json:"ef"`
	Interval      int       `db:"interval" json:"interval"`
	NextReview    Date      `db:"next_review" json:"next_review"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at" json:"last_updated_at"`

	// Flashcard is attached by the services when a review is presented; it is not a column.
	Flashcard *Flashcard `db:"-" json:"flashcard,omitempty"`
}

// NewReview returns a fresh review due today.
func NewReview(flashcardID int64, direction Direction, now time.Time) Review {
	return Review{
		FlashcardID:   flashcardID,
		Direction:     direction,
		Repetitions:   0,
		EF:            DefaultEasiness,
		Interval:      DefaultInterval,
		NextReview:    NewDate(now),
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// IsDue reports whether the review should be shown on the given day.
func (r Review) IsDue(today Date) bool {
	return !r.NextReview.After(today.Time)
}

// Faces returns the text shown first and second for this review's direction.
// Both are empty when no flashcard is attached.
func (r Review) Faces() (front, back string) {
	if r.Flashcard == nil {
		return "", ""
	}
	if r.Direction == BackToFront {
		return r.Flashcard.Back, r.Flashcard.Front
	}
	return r.Flashcard.Front, r.Flashcard.Back
}
