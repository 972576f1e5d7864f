package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		EventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_events_processed_total",
			Help: "The total number of game-completed events processed by the state machine.",
		}),
		DuplicateEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_duplicate_events_total",
			Help: "The total number of already-applied events skipped.",
		}),
		SeasonRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_season_write_retries_total",
			Help: "The total number of season writes retried after a version conflict.",
		}),
		Promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_promotions_total",
			Help: "The total number of division promotions applied.",
		}),
		Relegations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_relegations_total",
			Help: "The total number of division relegations applied.",
		}),
		MilestoneUnlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_milestone_unlocks_total",
			Help: "The total number of milestones unlocked.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_leaderboard_cache_hits_total",
			Help: "The total number of leaderboard reads served from cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_leaderboard_cache_misses_total",
			Help: "The total number of leaderboard reads that missed the cache.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "futeba_event_processing_duration_seconds",
			Help:    "The duration of individual event processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "futeba_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "futeba_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.EventsProcessed,
		s.DuplicateEvents,
		s.SeasonRetries,
		s.Promotions,
		s.Relegations,
		s.MilestoneUnlocks,
		s.CacheHits,
		s.CacheMisses,
		s.ProcessingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncEventsProcessed() {
	s.EventsProcessed.Inc()
}

func (s *Service) IncDuplicateEvents() {
	s.DuplicateEvents.Inc()
}

func (s *Service) IncSeasonRetries() {
	s.SeasonRetries.Inc()
}

func (s *Service) IncPromotions() {
	s.Promotions.Inc()
}

func (s *Service) IncRelegations() {
	s.Relegations.Inc()
}

func (s *Service) IncMilestoneUnlocks() {
	s.MilestoneUnlocks.Inc()
}

func (s *Service) IncCacheHits() {
	s.CacheHits.Inc()
}

func (s *Service) IncCacheMisses() {
	s.CacheMisses.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
