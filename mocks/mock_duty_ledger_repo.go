package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockDutyLedgerRepo is a mock implementation of port.DutyLedgerRepository.
type MockDutyLedgerRepo struct {
	mock.Mock
}

func (m *MockDutyLedgerRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.DutyLedger, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DutyLedger), args.Error(1)
}

func (m *MockDutyLedgerRepo) Upsert(ctx context.Context, ledger *domain.DutyLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}
