package services

import (
	"context"
	"strings"

	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
)

// DeckInput is the data needed to create a deck.
type DeckInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// DeckUpdate changes the fields that are set. Detach makes the deck a root
// deck and wins over ParentID.
type DeckUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	ParentID *int64  `json:"parent_id,omitempty"`
	Detach   bool    `json:"detach,omitempty"`
}

// DeckService handles deck-related business logic
type DeckService interface {
	AddDeck(ctx context.Context, in DeckInput) (*models.Deck, error)
	UpdateDeck(ctx context.Context, id int64, in DeckUpdate) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	GetDeckByName(ctx context.Context, name string) (*models.Deck, error)
	ListDecks(ctx context.Context) ([]models.Deck, error)
	ListSubdecks(ctx context.Context, id int64) ([]models.Deck, error)
}

type deckService struct {
	store repository.Store
}

// NewDeckService creates a new DeckService
func NewDeckService(store repository.Store) DeckService {
	return &deckService{store: store}
}

func (s *deckService) AddDeck(ctx context.Context, in DeckInput) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	in.Name = strings.TrimSpace(in.Name)
	log.Debug("adding deck: name=%q", in.Name)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var deck *models.Deck
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if in.ParentID != nil {
			if err := requireParent(ctx, repos, *in.ParentID); err != nil {
				return err
			}
		}
		var err error
		deck, err = repos.Decks().Add(ctx, models.Deck{Name: in.Name, ParentID: in.ParentID})
		return err
	})
	if err != nil {
		log.Debug("failed to add deck: %v", err)
		return nil, wrapError(err)
	}
	log.Info("deck added: id=%d, name=%q", deck.ID, deck.Name)
	return deck, nil
}

func (s *deckService) UpdateDeck(ctx context.Context, id int64, in DeckUpdate) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating deck: id=%d", id)

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var deck *models.Deck
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		current, err := repos.Decks().Get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return errors.NewNotFoundError("deck", id)
		}

		patch := repository.Patch{}
		if in.Name != nil {
			patch["name"] = *in.Name
		}
		switch {
		case in.Detach:
			patch["parent_id"] = nil
		case in.ParentID != nil:
			if err := s.checkReparent(ctx, repos, id, *in.ParentID); err != nil {
				return err
			}
			patch["parent_id"] = *in.ParentID
		}

		if err := repos.Decks().Update(ctx, id, patch); err != nil {
			return err
		}
		deck, err = repos.Decks().Get(ctx, id)
		return err
	})
	if err != nil {
		log.Debug("failed to update deck %d: %v", id, err)
		return nil, wrapError(err)
	}
	return deck, nil
}

// checkReparent rejects parents that would put the deck inside its own subtree.
func (s *deckService) checkReparent(ctx context.Context, repos repository.Repositories, id, parentID int64) error {
	if parentID == id {
		return errors.NewConstraintError("parent_id", "a deck cannot be its own parent")
	}
	if err := requireParent(ctx, repos, parentID); err != nil {
		return err
	}
	subtree, err := repos.Decks().GetWithSubdecks(ctx, id)
	if err != nil {
		return err
	}
	for _, d := range subtree {
		if d.ID == parentID {
			return errors.NewConstraintError("parent_id", "a deck cannot move below its own sub-deck")
		}
	}
	return nil
}

func requireParent(ctx context.Context, repos repository.Repositories, parentID int64) error {
	parent, err := repos.Decks().Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return errors.NewConstraintError("parent_id", "references a missing deck")
	}
	return nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: id=%d", id)

	if _, err := s.GetDeck(ctx, id); err != nil {
		return err
	}
	if err := s.store.Decks().Delete(ctx, id); err != nil {
		log.Error("failed to delete deck: %v", err)
		return wrapError(err)
	}
	log.Info("deck deleted: id=%d", id)
	return nil
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck: id=%d", id)

	deck, err := s.store.Decks().Get(ctx, id)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, wrapError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) GetDeckByName(ctx context.Context, name string) (*models.Deck, error) {
	deck, err := s.store.Decks().GetByName(ctx, name)
	if err != nil {
		return nil, wrapError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", name)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	logger.FromContext(ctx).Debug("listing decks")

	decks, err := s.store.Decks().GetAll(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	return decks, nil
}

func (s *deckService) ListSubdecks(ctx context.Context, id int64) ([]models.Deck, error) {
	logger.FromContext(ctx).Debug("listing subdecks: id=%d", id)

	decks, err := s.store.Decks().GetWithSubdecks(ctx, id)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(decks) == 0 {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return decks, nil
}
