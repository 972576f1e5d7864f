package games

import "sync"

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertResultFunc            func(res *GameResult) error
	UpdateProcessingStatusFunc  func(eventID string, status ProcessingStatus) error
	GetResultsForProcessingFunc func() ([]*GameResult, error)
	GetResultFunc               func(eventID string) (*GameResult, error)
	ClearFunc                   func()

	// Call records
	UpsertResultCalls           []*GameResult
	UpdateProcessingStatusCalls []struct {
		EventID string
		Status  ProcessingStatus
	}
	ClearCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertResult(res *GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertResultCalls = append(m.UpsertResultCalls, res)
	if m.UpsertResultFunc != nil {
		return m.UpsertResultFunc(res)
	}
	return nil
}

func (m *MockStore) UpdateProcessingStatus(eventID string, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		EventID string
		Status  ProcessingStatus
	}{eventID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(eventID, status)
	}
	return nil
}

func (m *MockStore) GetResultsForProcessing() ([]*GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetResultsForProcessingFunc != nil {
		return m.GetResultsForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) GetResult(eventID string) (*GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetResultFunc != nil {
		return m.GetResultFunc(eventID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
