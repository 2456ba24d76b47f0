package iocache

import (
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetQueryStore implements the CacheManager interface.
func (m *MockCacheManager) GetQueryStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetSnapshotStore implements the CacheManager interface.
func (m *MockCacheManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// RecordSnapshot implements the SnapshotStore interface.
func (m *MockSnapshotStore) RecordSnapshot(snap schema.Snapshot) (int64, error) {
	args := m.Called(snap)
	return args.Get(0).(int64), args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.SnapshotStatus), args.Error(1)
}

// GetAllSnapshotRuns implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetAllSnapshotRuns() ([]schema.SnapshotRunRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.SnapshotRunRecord)
	return rows, args.Error(1)
}

// GetAllSnapshotAnomalies implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetAllSnapshotAnomalies() ([]schema.SnapshotAnomalyRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.SnapshotAnomalyRecord)
	return rows, args.Error(1)
}

// GetAllSnapshotEfficiency implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetAllSnapshotEfficiency() ([]schema.SnapshotEfficiencyRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.SnapshotEfficiencyRecord)
	return rows, args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
