package outwriter

import (
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockOutputWriter is a mock implementation of OutputWriter for testing.
type MockOutputWriter struct {
	mock.Mock
}

var _ contract.OutputWriter = &MockOutputWriter{} // Compile-time check

// WriteDashboard implements the OutputWriter interface.
func (m *MockOutputWriter) WriteDashboard(dashboard schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	args := m.Called(dashboard, cfg, duration)
	return args.Error(0)
}

// WriteTrends implements the OutputWriter interface.
func (m *MockOutputWriter) WriteTrends(section schema.TrendsSection, cfg *contract.Config, duration time.Duration) error {
	args := m.Called(section, cfg, duration)
	return args.Error(0)
}

// WriteEfficiency implements the OutputWriter interface.
func (m *MockOutputWriter) WriteEfficiency(section schema.EfficiencySection, cfg *contract.Config, duration time.Duration) error {
	args := m.Called(section, cfg, duration)
	return args.Error(0)
}

// WriteAnomalies implements the OutputWriter interface.
func (m *MockOutputWriter) WriteAnomalies(section schema.AnomalySection, cfg *contract.Config, duration time.Duration) error {
	args := m.Called(section, cfg, duration)
	return args.Error(0)
}
