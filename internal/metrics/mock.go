package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	eventsProcessed     int
	duplicateEvents     int
	seasonRetries       int
	promotions          int
	relegations         int
	milestoneUnlocks    int
	cacheHits           int
	cacheMisses         int
	processingDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncEventsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsProcessed++
}

func (m *Mock) IncDuplicateEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duplicateEvents++
}

func (m *Mock) IncSeasonRetries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasonRetries++
}

func (m *Mock) IncPromotions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions++
}

func (m *Mock) IncRelegations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relegations++
}

func (m *Mock) IncMilestoneUnlocks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.milestoneUnlocks++
}

func (m *Mock) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *Mock) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// EventsProcessed returns the number of times IncEventsProcessed was called.
func (m *Mock) EventsProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsProcessed
}

// DuplicateEvents returns the number of times IncDuplicateEvents was called.
func (m *Mock) DuplicateEvents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duplicateEvents
}

// SeasonRetries returns the number of times IncSeasonRetries was called.
func (m *Mock) SeasonRetries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seasonRetries
}

// Promotions returns the number of times IncPromotions was called.
func (m *Mock) Promotions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promotions
}

// Relegations returns the number of times IncRelegations was called.
func (m *Mock) Relegations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relegations
}

// MilestoneUnlocks returns the number of times IncMilestoneUnlocks was called.
func (m *Mock) MilestoneUnlocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.milestoneUnlocks
}

// CacheHits returns the number of times IncCacheHits was called.
func (m *Mock) CacheHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits
}

// CacheMisses returns the number of times IncCacheMisses was called.
func (m *Mock) CacheMisses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
