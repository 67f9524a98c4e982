package services_test

import (
	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/services"
)

func (s *ServiceSuite) TestAddFlashcardCreatesReviews() {
	deck := s.addDeck("Spanish", nil)

	plain := s.addCard(deck, "uno", false)
	reversible := s.addCard(deck, "dos", true)

	reviews, err := s.store.Reviews().GetByFlashcard(s.ctx, plain.ID)
	s.Require().NoError(err)
	s.Require().Len(reviews, 1)
	s.Assert().Equal(models.FrontToBack, reviews[0].Direction)
	s.Assert().Equal(models.Today(), reviews[0].NextReview)

	reviews, err = s.store.Reviews().GetByFlashcard(s.ctx, reversible.ID)
	s.Require().NoError(err)
	s.Require().Len(reviews, 2)
	s.Assert().Equal(models.FrontToBack, reviews[0].Direction)
	s.Assert().Equal(models.BackToFront, reviews[1].Direction)
}

func (s *ServiceSuite) TestAddFlashcardValidation() {
	deck := s.addDeck("Spanish", nil)

	_, err := s.flashcards.AddFlashcard(s.ctx, services.FlashcardInput{Front: " ", Back: "x", DeckID: deck.ID})
	s.Assert().True(errors.IsConstraintViolation(err))

	_, err = s.flashcards.AddFlashcard(s.ctx, services.FlashcardInput{Front: "x", Back: "", DeckID: deck.ID})
	s.Assert().True(errors.IsConstraintViolation(err))

	_, err = s.flashcards.AddFlashcard(s.ctx, services.FlashcardInput{Front: "x", Back: "y"})
	s.Assert().True(errors.IsConstraintViolation(err))
}

func (s *ServiceSuite) TestAddFlashcardMissingDeckLeavesNothing() {
	_, err := s.flashcards.AddFlashcard(s.ctx, services.FlashcardInput{Front: "x", Back: "y", DeckID: 42})
	s.Require().Error(err)
	s.Assert().True(errors.IsConstraintViolation(err))
	s.Assert().Equal(0, s.count("flashcards"))
	s.Assert().Equal(0, s.count("reviews"))
}

func (s *ServiceSuite) TestEditFlashcardRegeneratesReviews() {
	deck := s.addDeck("Spanish", nil)
	card := s.addCard(deck, "uno", false)
	s.Assert().Equal(1, s.count("reviews"))

	edited, err := s.flashcards.EditFlashcard(s.ctx, card.ID, services.FlashcardInput{
		Front:      "uno",
		Back:       "one",
		Reversible: true,
		DeckID:     deck.ID,
	})
	s.Require().NoError(err)
	s.Assert().Equal("one", edited.Back)
	s.Assert().True(edited.Reversible)

	reviews, err := s.store.Reviews().GetByFlashcard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Assert().Len(reviews, 2)

	_, err = s.flashcards.EditFlashcard(s.ctx, card.ID, services.FlashcardInput{Front: "uno", Back: "one", DeckID: deck.ID})
	s.Require().NoError(err)
	s.Assert().Equal(1, s.count("reviews"))
}

func (s *ServiceSuite) TestEditFlashcardFailureRollsBack() {
	deck := s.addDeck("Spanish", nil)
	card := s.addCard(deck, "uno", true)

	_, err := s.flashcards.EditFlashcard(s.ctx, card.ID, services.FlashcardInput{Front: "uno", Back: "one", DeckID: deck.ID + 50})
	s.Require().Error(err)
	s.Assert().True(errors.IsConstraintViolation(err))

	got, err := s.flashcards.GetFlashcard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Assert().Equal("uno-back", got.Back)
	s.Assert().Equal(2, s.count("reviews"))

	_, err = s.flashcards.EditFlashcard(s.ctx, card.ID+9, services.FlashcardInput{Front: "a", Back: "b", DeckID: deck.ID})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *ServiceSuite) TestDeleteFlashcard() {
	deck := s.addDeck("Spanish", nil)
	card := s.addCard(deck, "uno", true)

	s.Require().NoError(s.flashcards.DeleteFlashcard(s.ctx, card.ID))
	s.Assert().Equal(0, s.count("reviews"))

	_, err := s.flashcards.GetFlashcard(s.ctx, card.ID)
	s.Assert().True(errors.IsNotFound(err))
	s.Assert().True(errors.IsNotFound(s.flashcards.DeleteFlashcard(s.ctx, card.ID)))
}

func (s *ServiceSuite) TestListFlashcards() {
	root := s.addDeck("root", nil)
	child := s.addDeck("child", root)
	other := s.addDeck("other", nil)
	s.addCard(root, "c", false)
	s.addCard(child, "a", false)
	s.addCard(other, "b", false)

	cards, err := s.flashcards.ListFlashcards(s.ctx, root.ID, models.Page{})
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal("a", cards[0].Front)
	s.Assert().Equal("c", cards[1].Front)

	all, err := s.flashcards.ListFlashcards(s.ctx, 0, models.Page{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Assert().Equal("a", all[0].Front)
	s.Assert().Equal("b", all[1].Front)

	_, err = s.flashcards.ListFlashcards(s.ctx, other.ID+10, models.Page{})
	s.Assert().True(errors.IsNotFound(err))
}
