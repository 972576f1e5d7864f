package season

import "sync"

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetFunc                   func(userID, seasonID string) (*Participation, error)
	SaveFunc                  func(p *Participation, gameID string) error
	IsGameAppliedFunc         func(gameID, userID string) (bool, error)
	GetSeasonParticipantsFunc func(seasonID string) ([]*Participation, error)
	ClearFunc                 func()

	// Call records
	GetCalls []struct {
		UserID   string
		SeasonID string
	}
	SaveCalls []struct {
		Participation *Participation
		GameID        string
	}
	ClearCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Get(userID, seasonID string) (*Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, struct {
		UserID   string
		SeasonID string
	}{userID, seasonID})
	if m.GetFunc != nil {
		return m.GetFunc(userID, seasonID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Save(p *Participation, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, struct {
		Participation *Participation
		GameID        string
	}{p, gameID})
	if m.SaveFunc != nil {
		return m.SaveFunc(p, gameID)
	}
	return nil
}

func (m *MockStore) IsGameApplied(gameID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsGameAppliedFunc != nil {
		return m.IsGameAppliedFunc(gameID, userID)
	}
	return false, nil
}

func (m *MockStore) GetSeasonParticipants(seasonID string) ([]*Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSeasonParticipantsFunc != nil {
		return m.GetSeasonParticipantsFunc(seasonID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
