package notifier

import (
	"sync"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendMilestoneNotificationFunc      func(userName string, m milestone.Milestone, dryRun bool) error
	SendDivisionChangeNotificationFunc func(userName string, t season.Transition, dryRun bool) error
	SendLeaderboardFunc                func(period ranking.Period, category ranking.Category, entries []ranking.Entry, dryRun bool) error

	// Call records
	SendMilestoneNotificationCalls []struct {
		UserName  string
		Milestone milestone.Milestone
	}
	SendDivisionChangeNotificationCalls []struct {
		UserName   string
		Transition season.Transition
	}
	SendLeaderboardCalls []struct {
		Period   ranking.Period
		Category ranking.Category
		Entries  []ranking.Entry
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMilestoneNotificationCalls = nil
	m.SendDivisionChangeNotificationCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendMilestoneNotification(userName string, ms milestone.Milestone, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMilestoneNotificationCalls = append(m.SendMilestoneNotificationCalls, struct {
		UserName  string
		Milestone milestone.Milestone
	}{userName, ms})
	if m.SendMilestoneNotificationFunc != nil {
		return m.SendMilestoneNotificationFunc(userName, ms, dryRun)
	}
	return nil
}

func (m *Mock) SendDivisionChangeNotification(userName string, t season.Transition, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDivisionChangeNotificationCalls = append(m.SendDivisionChangeNotificationCalls, struct {
		UserName   string
		Transition season.Transition
	}{userName, t})
	if m.SendDivisionChangeNotificationFunc != nil {
		return m.SendDivisionChangeNotificationFunc(userName, t, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(period ranking.Period, category ranking.Category, entries []ranking.Entry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		Period   ranking.Period
		Category ranking.Category
		Entries  []ranking.Entry
	}{period, category, entries})
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(period, category, entries, dryRun)
	}
	return nil
}
