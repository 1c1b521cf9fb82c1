package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockCashbookRepo is a mock implementation of port.CashbookRepository.
type MockCashbookRepo struct {
	mock.Mock
}

func (m *MockCashbookRepo) UpsertForDocument(ctx context.Context, entry *domain.CashbookEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCashbookRepo) DeleteForDocument(ctx context.Context, tenantID, documentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, documentID)
	return args.Error(0)
}
