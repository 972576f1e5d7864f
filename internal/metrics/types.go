package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	EventsProcessed    prometheus.Counter
	DuplicateEvents    prometheus.Counter
	SeasonRetries      prometheus.Counter
	Promotions         prometheus.Counter
	Relegations        prometheus.Counter
	MilestoneUnlocks   prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	ProcessingDuration prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
