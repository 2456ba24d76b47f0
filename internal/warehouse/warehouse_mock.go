package warehouse

import (
	"context"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockWarehouse is a mock implementation of Warehouse for testing.
type MockWarehouse struct {
	mock.Mock
}

var _ contract.Warehouse = &MockWarehouse{} // Compile-time check

// Trends implements the Warehouse interface.
func (m *MockWarehouse) Trends(ctx context.Context) ([]schema.TrendMetric, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.TrendMetric)
	return rows, args.Error(1)
}

// Efficiency implements the Warehouse interface.
func (m *MockWarehouse) Efficiency(ctx context.Context, lookbackDays int) ([]schema.EfficiencyRecord, error) {
	args := m.Called(ctx, lookbackDays)
	rows, _ := args.Get(0).([]schema.EfficiencyRecord)
	return rows, args.Error(1)
}

// Anomalies implements the Warehouse interface.
func (m *MockWarehouse) Anomalies(ctx context.Context, lookbackDays int, threshold float64) ([]schema.AnomalyRecord, error) {
	args := m.Called(ctx, lookbackDays, threshold)
	rows, _ := args.Get(0).([]schema.AnomalyRecord)
	return rows, args.Error(1)
}

// DailyCredits implements the Warehouse interface.
func (m *MockWarehouse) DailyCredits(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error) {
	args := m.Called(ctx, lookbackDays)
	rows, _ := args.Get(0).([]schema.DailyMetricPoint)
	return rows, args.Error(1)
}

// DailyQueries implements the Warehouse interface.
func (m *MockWarehouse) DailyQueries(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error) {
	args := m.Called(ctx, lookbackDays)
	rows, _ := args.Get(0).([]schema.DailyMetricPoint)
	return rows, args.Error(1)
}

// Close implements the Warehouse interface.
func (m *MockWarehouse) Close() error {
	args := m.Called()
	return args.Error(0)
}
