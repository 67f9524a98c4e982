package services_test

import (
	"context"
	"time"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
	"github.com/memotica/memotica/internal/services"
)

func (s *ServiceSuite) setNextReview(reviewID int64, d models.Date) {
	s.Require().NoError(s.store.Reviews().Update(s.ctx, reviewID, repository.Patch{"next_review": d}))
}

func (s *ServiceSuite) TestListDueReviewsAcrossSubdecks() {
	root := s.addDeck("root", nil)
	child := s.addDeck("child", root)
	s.addDeck("unrelated", nil)

	rootCard := s.addCard(root, "uno", false)
	childCard := s.addCard(child, "dos", true)
	future := s.addCard(child, "tres", false)

	futureReviews, err := s.store.Reviews().GetByFlashcard(s.ctx, future.ID)
	s.Require().NoError(err)
	s.setNextReview(futureReviews[0].ID, models.Today().AddDays(2))

	due, err := s.reviews.ListDueReviews(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Require().Len(due, 3)

	// Root deck first, then its sub-deck.
	s.Assert().Equal(rootCard.ID, due[0].FlashcardID)
	s.Assert().Equal(childCard.ID, due[1].FlashcardID)
	s.Assert().Equal(childCard.ID, due[2].FlashcardID)
	for _, r := range due {
		s.Require().NotNil(r.Flashcard)
		s.Assert().Equal(r.FlashcardID, r.Flashcard.ID)
		s.Assert().True(r.IsDue(models.Today()))
	}

	_, err = s.reviews.ListDueReviews(s.ctx, 999)
	s.Assert().True(errors.IsNotFound(err))
}

func (s *ServiceSuite) TestStartSessionPersistsScores() {
	deck := s.addDeck("Spanish", nil)
	card := s.addCard(deck, "uno", false)

	session, err := s.reviews.StartSession(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Require().False(session.IsEmpty())

	front, err := session.CurrentFront()
	s.Require().NoError(err)
	s.Assert().Equal("uno", front)

	s.Require().NoError(session.Reveal())
	s.Require().NoError(session.Score(s.ctx, 5))
	s.Assert().True(session.IsEmpty())

	reviews, err := s.store.Reviews().GetByFlashcard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Require().Len(reviews, 1)
	s.Assert().Equal(1, reviews[0].Repetitions)
	s.Assert().InDelta(2.6, reviews[0].EF, 1e-9)
	s.Assert().Equal(models.Today().AddDays(1), reviews[0].NextReview)

	due, err := s.reviews.ListDueReviews(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Assert().Empty(due)
}

func (s *ServiceSuite) TestAbortKeepsScoredReviews() {
	deck := s.addDeck("Spanish", nil)
	s.addCard(deck, "uno", false)
	s.addCard(deck, "dos", false)

	session, err := s.reviews.StartSession(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Require().Equal(2, session.Remaining())

	s.Require().NoError(session.Reveal())
	s.Require().NoError(session.Score(s.ctx, 3))
	session.Abort()

	due, err := s.reviews.ListDueReviews(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Assert().Len(due, 1)
}

func (s *ServiceSuite) TestResetReviews() {
	root := s.addDeck("root", nil)
	child := s.addDeck("child", root)
	plain := s.addCard(root, "uno", false)
	s.addCard(child, "dos", true)

	reviews, err := s.store.Reviews().GetByFlashcard(s.ctx, plain.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reviews().Update(s.ctx, reviews[0].ID, repository.Patch{
		"repetitions": 4, "ef": 1.7, "interval": 30, "next_review": models.Today().AddDays(30),
	}))

	created, err := s.reviews.ResetReviews(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Assert().Equal(3, created)
	s.Assert().Equal(3, s.count("reviews"))

	reviews, err = s.store.Reviews().GetByFlashcard(s.ctx, plain.ID)
	s.Require().NoError(err)
	s.Require().Len(reviews, 1)
	s.Assert().Equal(0, reviews[0].Repetitions)
	s.Assert().Equal(models.DefaultEasiness, reviews[0].EF)
	s.Assert().Equal(models.Today(), reviews[0].NextReview)

	_, err = s.reviews.ResetReviews(s.ctx, 999)
	s.Assert().True(errors.IsNotFound(err))
}

func (s *ServiceSuite) TestDeckStats() {
	deck := s.addDeck("Spanish", nil)
	s.addCard(deck, "uno", true)
	s.addCard(deck, "dos", false)

	stats, err := s.reviews.DeckStats(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Assert().Equal(1, stats.TotalDecks)
	s.Assert().Equal(2, stats.TotalCards)
	s.Assert().Equal(3, stats.TotalReviews)
	s.Assert().Equal(3, stats.ReviewsDue)
	s.Assert().InDelta(models.DefaultEasiness, stats.AvgEaseFactor, 1e-9)
}

func (s *ServiceSuite) TestClockDrivesDueDates() {
	deck := s.addDeck("Spanish", nil)
	s.addCard(deck, "uno", false)

	yesterday := func() time.Time { return time.Now().AddDate(0, 0, -1) }
	svc := services.NewReviewService(s.store, services.WithServiceClock(yesterday))

	due, err := svc.ListDueReviews(context.Background(), deck.ID)
	s.Require().NoError(err)
	s.Assert().Empty(due)
}

func (s *ServiceSuite) TestSchedule() {
	got, err := s.reviews.Schedule(services.ScheduleInput{Repetitions: 3, EF: 2.5, Interval: 12, Quality: 5})
	s.Require().NoError(err)
	s.Assert().Equal(4, got.Repetitions)
	s.Assert().Equal(30, got.Interval)
	s.Assert().InDelta(2.6, got.EF, 1e-9)

	_, err = s.reviews.Schedule(services.ScheduleInput{EF: 2.5, Quality: 6})
	s.Assert().True(errors.HasCode(err, errors.ErrCodeBadRequest))

	_, err = s.reviews.Schedule(services.ScheduleInput{EF: 1.0, Quality: 3})
	s.Assert().True(errors.HasCode(err, errors.ErrCodeBadRequest))
}
