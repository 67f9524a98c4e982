package flashcard_test

import (
	"testing"
	"time"

	apperrors "github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/flashcard"
	"github.com/memotica/memotica/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_LiteralCases(t *testing.T) {
	tests := []struct {
		name                           string
		quality, repetitions, interval int
		ef                             float64
		wantRepetitions, wantInterval  int
		wantEF                         float64
	}{
		{"wrong on a new card", 0, 0, 0, 2.5, 0, 1, 2.15},
		{"good on a new card", 3, 0, 0, 2.5, 1, 1, 2.432},
		{"good on the second success", 3, 1, 1, 2.5, 2, 6, 2.432},
		{"easy on a new card", 5, 0, 0, 2.5, 1, 1, 2.6},
		{"easy on a mature card", 5, 3, 12, 2.5, 4, 30, 2.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reps, ef, interval := flashcard.Schedule(tt.repetitions, tt.ef, tt.interval, tt.quality)
			assert.Equal(t, tt.wantRepetitions, reps)
			assert.InDelta(t, tt.wantEF, ef, 0.005)
			assert.Equal(t, tt.wantInterval, interval)
		})
	}
}

func TestSchedule_FirstSuccessIsOneDay(t *testing.T) {
	for q := flashcard.PassingQuality; q <= flashcard.MaxQuality; q++ {
		for _, ef := range []float64{1.3, 1.8, 2.5, 3.1} {
			for _, interval := range []int{0, 1, 9, 120} {
				reps, _, got := flashcard.Schedule(0, ef, interval, q)
				assert.Equal(t, 1, reps)
				assert.Equal(t, 1, got)
			}
		}
	}
}

func TestSchedule_SecondSuccessIsSixDays(t *testing.T) {
	for q := flashcard.PassingQuality; q <= flashcard.MaxQuality; q++ {
		reps, _, interval := flashcard.Schedule(1, 2.1, 1, q)
		assert.Equal(t, 2, reps)
		assert.Equal(t, 6, interval)
	}
}

func TestSchedule_LaterSuccessMultipliesByOldEasiness(t *testing.T) {
	tests := []struct {
		interval int
		ef       float64
		want     int
	}{
		{6, 2.5, 15},
		{5, 2.5, 13}, // 12.5 rounds half away from zero
		{6, 1.3, 8},  // 7.8
		{10, 1.34, 13},
		{15, 2.6, 39},
	}
	for _, tt := range tests {
		for q := flashcard.PassingQuality; q <= flashcard.MaxQuality; q++ {
			reps, _, got := flashcard.Schedule(4, tt.ef, tt.interval, q)
			assert.Equal(t, 5, reps)
			assert.Equal(t, tt.want, got, "interval=%d ef=%g q=%d", tt.interval, tt.ef, q)
		}
	}
}

func TestSchedule_FailureResets(t *testing.T) {
	for q := flashcard.MinQuality; q < flashcard.PassingQuality; q++ {
		for _, reps := range []int{0, 1, 7} {
			for _, interval := range []int{0, 1, 40} {
				gotReps, _, gotInterval := flashcard.Schedule(reps, 2.5, interval, q)
				assert.Equal(t, 0, gotReps)
				assert.Equal(t, 1, gotInterval)
			}
		}
	}
}

func TestSchedule_EasinessFloor(t *testing.T) {
	for q := flashcard.MinQuality; q <= flashcard.MaxQuality; q++ {
		for _, ef := range []float64{1.3, 1.35, 1.5, 2.0, 2.5, 4.0} {
			_, got, _ := flashcard.Schedule(2, ef, 6, q)
			assert.GreaterOrEqual(t, got, models.MinEasiness, "ef=%g q=%d", ef, q)
		}
	}

	_, ef, _ := flashcard.Schedule(0, 1.3, 1, 0)
	assert.Equal(t, models.MinEasiness, ef)
}

func TestSchedule_Misuse(t *testing.T) {
	tests := []struct {
		name              string
		reps, interval, q int
		ef                float64
	}{
		{"quality too high", 0, 1, 6, 2.5},
		{"quality negative", 0, 1, -1, 2.5},
		{"negative repetitions", -1, 1, 3, 2.5},
		{"easiness below floor", 0, 1, 3, 1.2},
		{"negative interval", 0, -1, 3, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected a panic")
				err, ok := r.(error)
				require.True(t, ok)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvariantViolation))
			}()
			flashcard.Schedule(tt.reps, tt.ef, tt.interval, tt.q)
		})
	}
}

func TestApplyReview(t *testing.T) {
	now := time.Date(2026, 3, 14, 21, 30, 0, 0, time.Local)
	review := models.Review{
		ID:          1,
		FlashcardID: 2,
		Direction:   models.BackToFront,
		Repetitions: 1,
		EF:          2.5,
		Interval:    1,
		NextReview:  models.NewDate(now),
	}

	updated := flashcard.ApplyReview(review, flashcard.AnswerGood, now)

	assert.Equal(t, 2, updated.Repetitions)
	assert.Equal(t, 6, updated.Interval)
	assert.InDelta(t, 2.432, updated.EF, 1e-9)
	assert.Equal(t, "2026-03-20", updated.NextReview.String())
	assert.Equal(t, now, updated.LastUpdatedAt)
	assert.Equal(t, review.ID, updated.ID)
	assert.Equal(t, review.Direction, updated.Direction)

	// The input is a value and stays untouched.
	assert.Equal(t, 1, review.Repetitions)
}

func TestParseAnswer(t *testing.T) {
	tests := map[string]int{
		"wrong": flashcard.AnswerWrong,
		"good":  flashcard.AnswerGood,
		" Easy": flashcard.AnswerEasy,
	}
	for in, want := range tests {
		got, err := flashcard.ParseAnswer(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := flashcard.ParseAnswer("maybe")
	assert.Error(t, err)
}
