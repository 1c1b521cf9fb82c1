package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockDraftStore is a mock implementation of port.DraftStore.
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	args := m.Called(ctx, tenantID, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftStore) Save(ctx context.Context, draft *domain.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftStore) Delete(ctx context.Context, tenantID, draftID uuid.UUID) error {
	args := m.Called(ctx, tenantID, draftID)
	return args.Error(0)
}

func (m *MockDraftStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
