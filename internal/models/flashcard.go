package models

import "time"

type Flashcard struct {
	ID            int64     `db:"id" json:"id"`
	Front         string    `db:"front" json:"front"`
	Back          string    `db:"back" json:"back"`
	Reversible    bool      `db:"reversible" json:"reversible"`
	DeckID        int64     `db:"deck_id" json:"deck_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at" json:"last_updated_at"`
}

// Directions lists the review directions a flashcard must have.
// Every flashcard is reviewed front-to-back; reversible ones also back-to-front.
func (f Flashcard) Directions() []Direction {
	if f.Reversible {
		return []Direction{FrontToBack, BackToFront}
	}
	return []Direction{FrontToBack}
}

// Page limits a listing. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}
