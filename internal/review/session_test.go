package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
	"github.com/memotica/memotica/internal/review"
	"github.com/memotica/memotica/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newReview(id int64, direction models.Direction, front, back string) models.Review {
	return models.Review{
		ID:          id,
		FlashcardID: id * 10,
		Direction:   direction,
		EF:          models.DefaultEasiness,
		Interval:    models.DefaultInterval,
		NextReview:  models.NewDate(fixedNow),
		Flashcard:   &models.Flashcard{ID: id * 10, Front: front, Back: back},
	}
}

func TestSession_EmptyAtConstruction(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	s := review.New(nil, repo)

	assert.True(t, s.IsEmpty())
	assert.Equal(t, review.Empty, s.State())
	assert.Equal(t, 0, s.Remaining())

	_, err := s.CurrentFront()
	assert.ErrorIs(t, err, review.ErrSessionEmpty)
	_, err = s.CurrentBack()
	assert.ErrorIs(t, err, review.ErrSessionEmpty)
	_, err = s.Current()
	assert.ErrorIs(t, err, review.ErrSessionEmpty)
	assert.ErrorIs(t, s.Reveal(), review.ErrSessionEmpty)
	assert.ErrorIs(t, s.Score(context.Background(), 3), review.ErrSessionEmpty)

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_RevealThenScore(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	s := review.New([]models.Review{newReview(1, models.FrontToBack, "hola", "hello")}, repo, review.WithClock(clock))

	require.Equal(t, review.AwaitingReveal, s.State())
	front, err := s.CurrentFront()
	require.NoError(t, err)
	assert.Equal(t, "hola", front)

	_, err = s.CurrentBack()
	assert.ErrorIs(t, err, review.ErrInvalidTransition)
	assert.ErrorIs(t, s.Score(context.Background(), 3), review.ErrInvalidTransition)

	require.NoError(t, s.Reveal())
	assert.Equal(t, review.AwaitingScore, s.State())
	assert.ErrorIs(t, s.Reveal(), review.ErrInvalidTransition)

	back, err := s.CurrentBack()
	require.NoError(t, err)
	assert.Equal(t, "hello", back)

	repo.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(p repository.Patch) bool {
		return p["repetitions"] == 1 &&
			p["interval"] == 1 &&
			p["next_review"] == models.NewDate(fixedNow).AddDays(1) &&
			p["last_updated_at"] == fixedNow
	})).Return(nil).Once()

	require.NoError(t, s.Score(context.Background(), 3))
	assert.True(t, s.IsEmpty())
	assert.Equal(t, review.Stats{Scored: 1, Retired: 1}, s.Stats())
	repo.AssertExpectations(t)
}

func TestSession_BackToFrontSwapsFaces(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	s := review.New([]models.Review{newReview(1, models.BackToFront, "hola", "hello")}, repo)

	front, err := s.CurrentFront()
	require.NoError(t, err)
	assert.Equal(t, "hello", front)

	require.NoError(t, s.Reveal())
	back, err := s.CurrentBack()
	require.NoError(t, err)
	assert.Equal(t, "hola", back)
}

func TestSession_FailedCardIsRequeued(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	repo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r1 := newReview(1, models.FrontToBack, "uno", "one")
	r2 := newReview(2, models.FrontToBack, "dos", "two")
	s := review.New([]models.Review{r1, r2}, repo, review.WithClock(clock))
	ctx := context.Background()

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur.ID)

	require.NoError(t, s.Reveal())
	require.NoError(t, s.Score(ctx, 1))

	cur, err = s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(2), cur.ID)
	assert.Equal(t, 2, s.Remaining())

	require.NoError(t, s.Reveal())
	require.NoError(t, s.Score(ctx, 5))

	cur, err = s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur.ID)
	assert.Equal(t, 0, cur.Repetitions)
	assert.InDelta(t, 2.248, cur.EF, 1e-9)
	assert.Equal(t, models.NewDate(fixedNow).AddDays(1), cur.NextReview)

	require.NoError(t, s.Reveal())
	require.NoError(t, s.Score(ctx, 3))

	assert.True(t, s.IsEmpty())
	assert.Equal(t, review.Stats{Scored: 3, Failed: 1, Retired: 2}, s.Stats())
	repo.AssertNumberOfCalls(t, "Update", 3)
}

func TestSession_PersistenceFailureKeepsCard(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	boom := errors.New("disk full")
	repo.On("Update", mock.Anything, int64(1), mock.Anything).Return(boom).Once()
	repo.On("Update", mock.Anything, int64(1), mock.Anything).Return(nil).Once()

	s := review.New([]models.Review{newReview(1, models.FrontToBack, "uno", "one")}, repo)
	require.NoError(t, s.Reveal())

	err := s.Score(context.Background(), 5)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, review.AwaitingScore, s.State())
	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, cur.Repetitions)
	assert.Equal(t, review.Stats{Remaining: 1}, s.Stats())

	require.NoError(t, s.Score(context.Background(), 5))
	assert.True(t, s.IsEmpty())
	repo.AssertExpectations(t)
}

func TestSession_Abort(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	repo.On("Update", mock.Anything, int64(1), mock.Anything).Return(nil).Once()

	s := review.New([]models.Review{
		newReview(1, models.FrontToBack, "uno", "one"),
		newReview(2, models.FrontToBack, "dos", "two"),
		newReview(3, models.FrontToBack, "tres", "three"),
	}, repo)

	require.NoError(t, s.Reveal())
	require.NoError(t, s.Score(context.Background(), 3))
	assert.Equal(t, 2, s.Remaining())

	s.Abort()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Remaining())
	assert.ErrorIs(t, s.Reveal(), review.ErrSessionEmpty)
	repo.AssertExpectations(t)
}

func TestSession_InputIsCopied(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	reviews := []models.Review{newReview(1, models.FrontToBack, "uno", "one")}
	s := review.New(reviews, repo)

	reviews[0].ID = 99
	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur.ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", review.Empty.String())
	assert.Equal(t, "awaiting-reveal", review.AwaitingReveal.String())
	assert.Equal(t, "awaiting-score", review.AwaitingScore.String())
}
