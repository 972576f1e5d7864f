package cache

import (
	"context"
	"sync"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
)

// Mock is an in-memory LeaderboardCache for testing.
// It is safe for concurrent use.
type Mock struct {
	mu   sync.Mutex
	docs map[string]*ranking.Document

	GetDocumentCalls      []string
	SetDocumentCalls      []string
	InvalidateBucketCalls []struct {
		Period    ranking.Period
		PeriodKey string
	}
}

// NewMock creates a new mock cache.
func NewMock() *Mock {
	return &Mock{docs: make(map[string]*ranking.Document)}
}

func (m *Mock) GetDocument(_ context.Context, id string) (*ranking.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetDocumentCalls = append(m.GetDocumentCalls, id)
	doc, ok := m.docs[id]
	return doc, ok
}

func (m *Mock) SetDocument(_ context.Context, doc *ranking.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetDocumentCalls = append(m.SetDocumentCalls, doc.ID)
	m.docs[doc.ID] = doc
	return nil
}

func (m *Mock) InvalidateBucket(_ context.Context, period ranking.Period, periodKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidateBucketCalls = append(m.InvalidateBucketCalls, struct {
		Period    ranking.Period
		PeriodKey string
	}{period, periodKey})
	for _, category := range ranking.Categories() {
		delete(m.docs, ranking.DocumentID(period, periodKey, category))
	}
	return nil
}

func (m *Mock) Close() error { return nil }
