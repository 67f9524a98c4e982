package models

// MaxDeckNameLength bounds deck names.
const MaxDeckNameLength = 50

// Deck is a named node in the deck forest. ParentID is nil for root decks.
type Deck struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ParentID *int64 `db:"parent_id" json:"parent_id"`
}

// IsRoot reports whether the deck has no parent.
func (d Deck) IsRoot() bool {
	return d.ParentID == nil
}

// DeckIDs returns the ids of the given decks, preserving order.
func DeckIDs(decks []Deck) []int64 {
	ids := make([]int64, 0, len(decks))
	for _, d := range decks {
		ids = append(ids, d.ID)
	}
	return ids
}
