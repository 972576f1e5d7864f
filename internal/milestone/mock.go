package milestone

// MockStore is a mock implementation of the milestone Store interface.
type MockStore struct {
	RecordUnlockFunc func(userID, milestoneID string, unlockedAt int64) (bool, error)
	GetUnlockedFunc  func(userID string) ([]string, error)
	BonusXPFunc      func(userID string) (int64, error)
	ClearFunc        func()

	RecordUnlockCalls []struct {
		UserID      string
		MilestoneID string
		UnlockedAt  int64
	}
	GetUnlockedCalls []string
	BonusXPCalls     []string
	ClearCalls       int
}

func (m *MockStore) RecordUnlock(userID, milestoneID string, unlockedAt int64) (bool, error) {
	m.RecordUnlockCalls = append(m.RecordUnlockCalls, struct {
		UserID      string
		MilestoneID string
		UnlockedAt  int64
	}{userID, milestoneID, unlockedAt})
	if m.RecordUnlockFunc != nil {
		return m.RecordUnlockFunc(userID, milestoneID, unlockedAt)
	}
	return true, nil
}

func (m *MockStore) GetUnlocked(userID string) ([]string, error) {
	m.GetUnlockedCalls = append(m.GetUnlockedCalls, userID)
	if m.GetUnlockedFunc != nil {
		return m.GetUnlockedFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) BonusXP(userID string) (int64, error) {
	m.BonusXPCalls = append(m.BonusXPCalls, userID)
	if m.BonusXPFunc != nil {
		return m.BonusXPFunc(userID)
	}
	return 0, nil
}

func (m *MockStore) Clear() {
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
