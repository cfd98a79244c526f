package contract

import (
	"context"

	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/mock"
)

// MockObjectStore is a mock implementation of ObjectStore for testing.
type MockObjectStore struct {
	mock.Mock
}

var _ ObjectStore = &MockObjectStore{} // Compile-time check

// Root implements the ObjectStore interface.
func (m *MockObjectStore) Root() string {
	return m.Called().String(0)
}

// Head implements the ObjectStore interface.
func (m *MockObjectStore) Head(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ResolveRevision implements the ObjectStore interface.
func (m *MockObjectStore) ResolveRevision(ctx context.Context, rev string) (string, error) {
	args := m.Called(ctx, rev)
	return args.String(0), args.Error(1)
}

// ReadCommit implements the ObjectStore interface.
func (m *MockObjectStore) ReadCommit(ctx context.Context, id string) (schema.CommitObject, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.CommitObject), args.Error(1)
}

// DiffTrees implements the ObjectStore interface.
func (m *MockObjectStore) DiffTrees(ctx context.Context, oldTreeID, newTreeID string) ([]schema.TreeChange, error) {
	args := m.Called(ctx, oldTreeID, newTreeID)
	changes, _ := args.Get(0).([]schema.TreeChange)
	return changes, args.Error(1)
}

// ReadBlob implements the ObjectStore interface.
func (m *MockObjectStore) ReadBlob(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
