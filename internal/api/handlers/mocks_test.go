package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"greendrake/propdesk/internal/models"
	"greendrake/propdesk/internal/services"
)

// --- Mocks ---

// MockPropertyService implements services.IPropertyService
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, ownerID string, input services.PropertyInput, files []services.ImageUpload) (*models.Property, error) {
	args := m.Called(ctx, ownerID, input, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ListProperties(ctx context.Context, ownerID string, page, limit int) (*models.PropertyPage, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyPage), args.Error(1)
}

func (m *MockPropertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) AddNote(ctx context.Context, id, noteType, text, authorID string) (*models.Property, error) {
	args := m.Called(ctx, id, noteType, text, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) SetImageCaption(ctx context.Context, id, imageKey, caption string) (*models.Property, error) {
	args := m.Called(ctx, id, imageKey, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}
