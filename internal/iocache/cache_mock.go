package iocache

import (
	"context"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCommitStore implements the CacheManager interface.
func (m *MockCacheManager) GetCommitStore() contract.CommitStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CommitStore)
	return store
}

// MockCommitStore is a mock implementation of CommitStore for testing.
type MockCommitStore struct {
	mock.Mock
}

var _ contract.CommitStore = &MockCommitStore{} // Compile-time check

// GetCommitStats implements the CommitStore interface.
func (m *MockCommitStore) GetCommitStats(ctx context.Context, rng schema.DateRange) ([]schema.CommitStats, error) {
	args := m.Called(ctx, rng)
	stats, _ := args.Get(0).([]schema.CommitStats)
	return stats, args.Error(1)
}

// StoreCommitStats implements the CommitStore interface.
func (m *MockCommitStore) StoreCommitStats(ctx context.Context, stats []schema.CommitStats, infos map[string]schema.CommitInfo) error {
	args := m.Called(ctx, stats, infos)
	return args.Error(0)
}

// GetMissingCommits implements the CommitStore interface.
func (m *MockCommitStore) GetMissingCommits(ctx context.Context, ids []string) ([]string, error) {
	args := m.Called(ctx, ids)
	missing, _ := args.Get(0).([]string)
	return missing, args.Error(1)
}

// GetCommitInfo implements the CommitStore interface.
func (m *MockCommitStore) GetCommitInfo(ctx context.Context, id string) (*schema.CommitInfo, error) {
	args := m.Called(ctx, id)
	info, _ := args.Get(0).(*schema.CommitInfo)
	return info, args.Error(1)
}

// GetStatus implements the CommitStore interface.
func (m *MockCommitStore) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CommitStore interface.
func (m *MockCommitStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
