package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/service"
)

// MockDraftService is a mock implementation of service.DraftService.
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) draft(args mock.Arguments) (*domain.Draft, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) Open(ctx context.Context, input service.OpenDraftInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, input))
}

func (m *MockDraftService) OpenDocument(ctx context.Context, tenantID, userID, documentID uuid.UUID) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, userID, documentID))
}

func (m *MockDraftService) Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, draftID))
}

func (m *MockDraftService) UpdateLineItems(ctx context.Context, tenantID, draftID uuid.UUID, items []domain.LineItem) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, draftID, items))
}

func (m *MockDraftService) UpdateHeader(ctx context.Context, tenantID, draftID uuid.UUID, input service.UpdateHeaderInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, draftID, input))
}

func (m *MockDraftService) Override(ctx context.Context, tenantID, draftID uuid.UUID, input service.OverrideInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, draftID, input))
}

func (m *MockDraftService) SetDuties(ctx context.Context, tenantID, draftID uuid.UUID, dutyIDs []uuid.UUID) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, draftID, dutyIDs))
}

func (m *MockDraftService) Reset(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, tenantID, draftID))
}

func (m *MockDraftService) Submit(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, tenantID, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDraftService) Discard(ctx context.Context, tenantID, draftID uuid.UUID) error {
	args := m.Called(ctx, tenantID, draftID)
	return args.Error(0)
}
