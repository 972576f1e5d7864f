package processor

import (
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/cache"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
)

// Processor advances game results through the progression pipeline.
type Processor struct {
	games     games.Store
	seasons   season.Store
	rankings  ranking.Store
	evaluator Evaluator
	notifier  Notifier
	cache     cache.LeaderboardCache
	pubsub    pubsub.PubSubClient
	metrics   metrics.Metrics
}
