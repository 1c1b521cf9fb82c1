package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockPartyDirectory is a mock implementation of port.PartyDirectory.
type MockPartyDirectory struct {
	mock.Mock
}

func (m *MockPartyDirectory) GetByID(ctx context.Context, tenantID, partyID uuid.UUID) (*domain.Party, error) {
	args := m.Called(ctx, tenantID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}
