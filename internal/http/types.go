package http

import (
	"net/http"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/cache"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/config"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/notifier"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/processor"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
)

type Server struct {
	Games          games.Store
	Seasons        season.Store
	Rankings       ranking.Store
	Milestones     milestone.Store
	Metrics        metrics.Metrics
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Cache          cache.LeaderboardCache
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
