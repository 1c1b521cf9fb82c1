package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
	"khata/internal/service"
)

// MockTotalsService is a mock implementation of service.TotalsService.
type MockTotalsService struct {
	mock.Mock
}

func (m *MockTotalsService) Preview(ctx context.Context, tenantID uuid.UUID, input service.PreviewInput) (*service.PreviewResult, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResult), args.Error(1)
}

func (m *MockTotalsService) ListDutyLedgers(ctx context.Context, tenantID uuid.UUID) ([]domain.DutyLedger, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DutyLedger), args.Error(1)
}
