package history

import (
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of HistoryStore for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockStore{} // Compile-time check

// RecordRun implements the HistoryStore interface.
func (m *MockStore) RecordRun(record schema.HistoryRecord, files []schema.HistoryFileRecord) error {
	args := m.Called(record, files)
	return args.Error(0)
}

// ListRuns implements the HistoryStore interface.
func (m *MockStore) ListRuns(limit int) ([]schema.HistoryRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.HistoryRecord)
	return runs, args.Error(1)
}

// ListRunFiles implements the HistoryStore interface.
func (m *MockStore) ListRunFiles() ([]schema.HistoryFileRecord, error) {
	args := m.Called()
	files, _ := args.Get(0).([]schema.HistoryFileRecord)
	return files, args.Error(1)
}

// Clear implements the HistoryStore interface.
func (m *MockStore) Clear(before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
