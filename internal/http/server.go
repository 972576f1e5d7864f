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

func NewServer(gamesStore games.Store, seasons season.Store, rankings ranking.Store, milestones milestone.Store, metricsSvc metrics.Metrics, counters metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, leaderboardCache cache.LeaderboardCache, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Games:          gamesStore,
		Seasons:        seasons,
		Rankings:       rankings,
		Milestones:     milestones,
		Metrics:        metricsSvc,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Cache:          leaderboardCache,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/season", Chain(s.SeasonStandingsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/levels", Chain(s.LevelTableHandler(), paramsMiddleware))
	s.Router.Handle("/level", Chain(s.LevelForXPHandler(), paramsMiddleware))
	s.Router.Handle("/milestones", Chain(s.MilestonesHandler(), paramsMiddleware))
	s.Router.Handle("/game-completed", Chain(s.GameCompletedHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessResultsHandler(), paramsMiddleware))
	s.Router.Handle("/rebuild", Chain(s.RebuildHandler(), paramsMiddleware))
	s.Router.Handle("/announce-leaderboard", Chain(s.AnnounceLeaderboardHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
