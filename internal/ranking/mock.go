package ranking

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	ApplyGameDeltaFunc func(gameID string, d *Delta) error
	GetDocumentFunc    func(period Period, periodKey string, category Category) (*Document, error)
	GetDeltasFunc      func(ctx context.Context, period Period, periodKey string) ([]*Delta, error)
	GetUserDeltaFunc   func(ctx context.Context, period Period, periodKey, userID string) (*Delta, error)
	RebuildFunc        func(ctx context.Context, period Period, periodKey string) error
	ClearFunc          func()

	// Call records
	ApplyGameDeltaCalls []struct {
		GameID string
		Delta  *Delta
	}
	RebuildCalls []struct {
		Period    Period
		PeriodKey string
	}
	ClearCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) ApplyGameDelta(gameID string, d *Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyGameDeltaCalls = append(m.ApplyGameDeltaCalls, struct {
		GameID string
		Delta  *Delta
	}{gameID, d})
	if m.ApplyGameDeltaFunc != nil {
		return m.ApplyGameDeltaFunc(gameID, d)
	}
	return nil
}

func (m *MockStore) GetDocument(period Period, periodKey string, category Category) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(period, periodKey, category)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetDeltas(ctx context.Context, period Period, periodKey string) ([]*Delta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetDeltasFunc != nil {
		return m.GetDeltasFunc(ctx, period, periodKey)
	}
	return nil, nil
}

func (m *MockStore) GetUserDelta(ctx context.Context, period Period, periodKey, userID string) (*Delta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserDeltaFunc != nil {
		return m.GetUserDeltaFunc(ctx, period, periodKey, userID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Rebuild(ctx context.Context, period Period, periodKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RebuildCalls = append(m.RebuildCalls, struct {
		Period    Period
		PeriodKey string
	}{period, periodKey})
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx, period, periodKey)
	}
	return nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
