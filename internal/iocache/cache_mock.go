package iocache

import (
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetResultCache implements the CacheManager interface.
func (m *MockCacheManager) GetResultCache() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetResultStore implements the CacheManager interface.
func (m *MockCacheManager) GetResultStore() contract.ResultStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ResultStore)
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

// MockResultStore is a mock implementation of ResultStore for testing.
type MockResultStore struct {
	mock.Mock
}

var _ contract.ResultStore = &MockResultStore{} // Compile-time check

// BeginRun implements the ResultStore interface.
func (m *MockResultStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the ResultStore interface.
func (m *MockResultStore) EndRun(runID int64, endTime time.Time, totalRepos int) error {
	args := m.Called(runID, endTime, totalRepos)
	return args.Error(0)
}

// RecordTrend implements the ResultStore interface.
func (m *MockResultStore) RecordTrend(runID int64, result schema.TrendResult) error {
	args := m.Called(runID, result)
	return args.Error(0)
}

// RecordSeasonality implements the ResultStore interface.
func (m *MockResultStore) RecordSeasonality(runID int64, result schema.SeasonalityResult) error {
	args := m.Called(runID, result)
	return args.Error(0)
}

// RecordCausality implements the ResultStore interface.
func (m *MockResultStore) RecordCausality(runID int64, result schema.CausalityResult) error {
	args := m.Called(runID, result)
	return args.Error(0)
}

// Close implements the ResultStore interface.
func (m *MockResultStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the ResultStore interface.
func (m *MockResultStore) GetStatus() (schema.ResultsStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ResultsStatus), args.Error(1)
}

// GetAllRuns implements the ResultStore interface.
func (m *MockResultStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// GetAllTrend implements the ResultStore interface.
func (m *MockResultStore) GetAllTrend() ([]schema.TrendRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.TrendRecord)
	return records, args.Error(1)
}

// GetAllSeasonality implements the ResultStore interface.
func (m *MockResultStore) GetAllSeasonality() ([]schema.SeasonalityRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SeasonalityRecord)
	return records, args.Error(1)
}

// GetAllCausality implements the ResultStore interface.
func (m *MockResultStore) GetAllCausality() ([]schema.CausalityRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.CausalityRecord)
	return records, args.Error(1)
}
