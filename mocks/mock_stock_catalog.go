package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khata/internal/domain"
)

// MockStockCatalog is a mock implementation of port.StockCatalog.
type MockStockCatalog struct {
	mock.Mock
}

func (m *MockStockCatalog) FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) ([]domain.StockItem, error) {
	args := m.Called(ctx, tenantID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockItem), args.Error(1)
}

func (m *MockStockCatalog) Upsert(ctx context.Context, tenantID uuid.UUID, docType domain.DocType, movements []domain.StockMovement) error {
	args := m.Called(ctx, tenantID, docType, movements)
	return args.Error(0)
}
