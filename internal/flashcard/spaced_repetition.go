package flashcard

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/models"
)

// Quality bounds for Schedule.
const (
	MinQuality = 0
	MaxQuality = 5
	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality = 3
)

// Answers offered when reviewing, mapped onto SM-2 qualities.
const (
	AnswerWrong = 0
	AnswerGood  = 3
	AnswerEasy  = 5
)

// ParseAnswer maps "wrong", "good" or "easy" to a quality.
func ParseAnswer(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wrong":
		return AnswerWrong, nil
	case "good":
		return AnswerGood, nil
	case "easy":
		return AnswerEasy, nil
	default:
		return 0, fmt.Errorf("unknown answer %q", s)
	}
}

// ValidQuality reports whether q can be passed to Schedule.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// Schedule applies one SM-2 step and returns the new repetitions, easiness
// and interval in days.
//
// A passing quality (3 and up) schedules 1 day after the first success, 6
// after the second and interval*easiness rounded half away from zero after
// that. A failing quality resets repetitions to 0 and the interval to 1.
// The interval uses the easiness from before this step. Easiness never drops
// below 1.3 and is not rounded.
//
// Schedule panics with an INVARIANT_VIOLATION error when quality is outside
// [0,5], repetitions or interval are negative, or easiness is below 1.3.
func Schedule(repetitions int, easiness float64, intervalDays, quality int) (int, float64, int) {
	switch {
	case !ValidQuality(quality):
		panic(apperrors.NewInvariantError("quality %d outside [%d,%d]", quality, MinQuality, MaxQuality))
	case repetitions < 0:
		panic(apperrors.NewInvariantError("repetitions %d is negative", repetitions))
	case easiness < models.MinEasiness:
		panic(apperrors.NewInvariantError("easiness %g below %g", easiness, models.MinEasiness))
	case intervalDays < 0:
		panic(apperrors.NewInvariantError("interval %d is negative", intervalDays))
	}

	if quality >= PassingQuality {
		switch repetitions {
		case 0:
			intervalDays = 1
		case 1:
			intervalDays = 6
		default:
			intervalDays = int(math.Round(float64(intervalDays) * easiness))
		}
		repetitions++
	} else {
		repetitions = 0
		intervalDays = 1
	}

	diff := float64(MaxQuality - quality)
	easiness += 0.1 - diff*(0.08+diff*0.002)
	if easiness < models.MinEasiness {
		easiness = models.MinEasiness
	}

	return repetitions, easiness, intervalDays
}

// ApplyReview schedules review for the given quality. The next review falls
// interval days after now's calendar day.
func ApplyReview(review models.Review, quality int, now time.Time) models.Review {
	review.Repetitions, review.EF, review.Interval = Schedule(review.Repetitions, review.EF, review.Interval, quality)
	review.NextReview = models.NewDate(now).AddDays(review.Interval)
	review.LastUpdatedAt = now
	return review
}
