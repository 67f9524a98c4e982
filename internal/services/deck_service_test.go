package services_test

import (
	"strings"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/services"
)

func (s *ServiceSuite) TestAddDeckTrimsAndValidates() {
	deck := s.addDeck("  Spanish  ", nil)
	s.Assert().Equal("Spanish", deck.Name)

	_, err := s.decks.AddDeck(s.ctx, services.DeckInput{Name: "   "})
	s.Assert().True(errors.IsConstraintViolation(err))

	_, err = s.decks.AddDeck(s.ctx, services.DeckInput{Name: strings.Repeat("x", 51)})
	s.Assert().True(errors.IsConstraintViolation(err))

	// Fifty multi-byte characters still fit.
	_, err = s.decks.AddDeck(s.ctx, services.DeckInput{Name: strings.Repeat("ñ", 50)})
	s.Assert().NoError(err)
}

func (s *ServiceSuite) TestAddDeckDuplicateName() {
	s.addDeck("Spanish", nil)

	_, err := s.decks.AddDeck(s.ctx, services.DeckInput{Name: "Spanish"})
	s.Require().Error(err)
	s.Assert().True(errors.IsConstraintViolation(err))
	s.Assert().Equal(1, s.count("decks"))
}

func (s *ServiceSuite) TestAddDeckMissingParent() {
	parent := int64(99)
	_, err := s.decks.AddDeck(s.ctx, services.DeckInput{Name: "orphan", ParentID: &parent})
	s.Assert().True(errors.IsConstraintViolation(err))
	s.Assert().Equal(0, s.count("decks"))
}

func (s *ServiceSuite) TestUpdateDeckRenameAndReparent() {
	languages := s.addDeck("Languages", nil)
	deck := s.addDeck("Spanish", nil)

	name := "Español"
	updated, err := s.decks.UpdateDeck(s.ctx, deck.ID, services.DeckUpdate{Name: &name, ParentID: &languages.ID})
	s.Require().NoError(err)
	s.Assert().Equal("Español", updated.Name)
	s.Require().NotNil(updated.ParentID)
	s.Assert().Equal(languages.ID, *updated.ParentID)

	updated, err = s.decks.UpdateDeck(s.ctx, deck.ID, services.DeckUpdate{Detach: true})
	s.Require().NoError(err)
	s.Assert().Nil(updated.ParentID)
}

func (s *ServiceSuite) TestUpdateDeckRejectsCycles() {
	root := s.addDeck("root", nil)
	child := s.addDeck("child", root)
	grandchild := s.addDeck("grandchild", child)

	_, err := s.decks.UpdateDeck(s.ctx, root.ID, services.DeckUpdate{ParentID: &root.ID})
	s.Assert().True(errors.IsConstraintViolation(err))

	_, err = s.decks.UpdateDeck(s.ctx, root.ID, services.DeckUpdate{ParentID: &grandchild.ID})
	s.Assert().True(errors.IsConstraintViolation(err))

	got, err := s.decks.GetDeck(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got.ParentID)
}

func (s *ServiceSuite) TestUpdateDeckValidation() {
	deck := s.addDeck("Spanish", nil)
	s.addDeck("French", nil)

	empty := " "
	_, err := s.decks.UpdateDeck(s.ctx, deck.ID, services.DeckUpdate{Name: &empty})
	s.Assert().True(errors.IsConstraintViolation(err))

	taken := "French"
	_, err = s.decks.UpdateDeck(s.ctx, deck.ID, services.DeckUpdate{Name: &taken})
	s.Assert().True(errors.IsConstraintViolation(err))

	_, err = s.decks.UpdateDeck(s.ctx, deck.ID+100, services.DeckUpdate{Name: &taken})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *ServiceSuite) TestDeleteDeck() {
	parent := s.addDeck("parent", nil)
	child := s.addDeck("child", parent)
	s.addCard(parent, "uno", true)

	s.Require().NoError(s.decks.DeleteDeck(s.ctx, parent.ID))

	_, err := s.decks.GetDeck(s.ctx, parent.ID)
	s.Assert().True(errors.IsNotFound(err))

	got, err := s.decks.GetDeck(s.ctx, child.ID)
	s.Require().NoError(err)
	s.Assert().True(got.IsRoot())
	s.Assert().Equal(0, s.count("flashcards"))
	s.Assert().Equal(0, s.count("reviews"))

	s.Assert().True(errors.IsNotFound(s.decks.DeleteDeck(s.ctx, parent.ID)))
}

func (s *ServiceSuite) TestListDecksAndSubdecks() {
	root := s.addDeck("root", nil)
	s.addDeck("b-child", root)
	s.addDeck("a-other", nil)

	decks, err := s.decks.ListDecks(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 3)
	s.Assert().Equal("a-other", decks[0].Name)

	sub, err := s.decks.ListSubdecks(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Assert().Len(sub, 2)

	byName, err := s.decks.GetDeckByName(s.ctx, "b-child")
	s.Require().NoError(err)
	s.Assert().Equal(root.ID, *byName.ParentID)

	_, err = s.decks.GetDeckByName(s.ctx, "missing")
	s.Assert().True(errors.IsNotFound(err))
}
