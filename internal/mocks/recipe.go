package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-remix/backend/internal/model"
)

// MockRecipeFetcher is a mock implementation of the chat-completion client
type MockRecipeFetcher struct {
	mock.Mock
}

// FetchRecipes mocks the FetchRecipes method
func (m *MockRecipeFetcher) FetchRecipes(ctx context.Context, prompt string) ([]model.Recipe, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// MockCookbookStore is a mock implementation of the cookbook
type MockCookbookStore struct {
	mock.Mock
}

// Save mocks the Save method
func (m *MockCookbookStore) Save(ctx context.Context, recipe model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

// List mocks the List method
func (m *MockCookbookStore) List(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// MockObjectStore is a mock implementation of the export bucket
type MockObjectStore struct {
	mock.Mock
}

// PutObject mocks the PutObject method
func (m *MockObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

// GeneratePresignedURL mocks the GeneratePresignedURL method
func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}
