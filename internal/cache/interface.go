package cache

import (
	"context"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
)

// LeaderboardCache is a read-through cache for assembled leaderboard
// documents. Misses fall through to the ranking store; writes after a
// game lands invalidate the touched buckets.
type LeaderboardCache interface {
	GetDocument(ctx context.Context, id string) (*ranking.Document, bool)
	SetDocument(ctx context.Context, doc *ranking.Document) error
	InvalidateBucket(ctx context.Context, period ranking.Period, periodKey string) error
	Close() error
}
