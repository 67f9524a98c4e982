package models

// Thresholds used to classify reviews in DeckStats.
const (
	MasteredRepetitions = 3
	StrugglingEasiness  = 2.0
)

// DeckStats summarizes the schedule of a deck and its sub-decks.
type DeckStats struct {
	DeckID          int64   `json:"deck_id"`
	TotalDecks      int     `json:"total_decks"`
	TotalCards      int     `json:"total_cards"`
	TotalReviews    int     `json:"total_reviews"`
	ReviewsDue      int     `json:"reviews_due"`
	ReviewsDueSoon  int     `json:"reviews_due_soon"`
	ReviewsMastered int     `json:"reviews_mastered"`
	ReviewsStruggle int     `json:"reviews_struggling"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}

// Add counts one review into the totals. DueSoon covers the week after today.
func (s *DeckStats) Add(r Review, today Date) {
	n := float64(s.TotalReviews)
	s.AvgEaseFactor = (s.AvgEaseFactor*n + r.EF) / (n + 1)
	s.AvgIntervalDays = (s.AvgIntervalDays*n + float64(r.Interval)) / (n + 1)
	s.TotalReviews++

	switch {
	case r.IsDue(today):
		s.ReviewsDue++
	case r.IsDue(today.AddDays(7)):
		s.ReviewsDueSoon++
	}
	if r.Repetitions >= MasteredRepetitions {
		s.ReviewsMastered++
	}
	if r.EF < StrugglingEasiness {
		s.ReviewsStruggle++
	}
}
