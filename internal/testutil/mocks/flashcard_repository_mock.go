package mocks

import (
	"context"

	"github.com/memotica/memotica/internal/models"
	"github.com/memotica/memotica/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockFlashcardRepository is a mock implementation of repository.FlashcardRepository
type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) Add(ctx context.Context, flashcard models.Flashcard) (*models.Flashcard, error) {
	args := m.Called(ctx, flashcard)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) Get(ctx context.Context, id int64) (*models.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) GetAll(ctx context.Context) ([]models.Flashcard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) Update(ctx context.Context, id int64, patch repository.Patch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockFlashcardRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlashcardRepository) GetByDeck(ctx context.Context, deckID int64, page models.Page) ([]models.Flashcard, error) {
	args := m.Called(ctx, deckID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) GetByDecks(ctx context.Context, deckIDs []int64, page models.Page) ([]models.Flashcard, error) {
	args := m.Called(ctx, deckIDs, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}
