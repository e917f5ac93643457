package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and
// labeling.
type Service struct {
	MatchesCompleted      prometheus.Counter
	RatingsApplied        prometheus.Counter
	RatingSkips           *prometheus.CounterVec
	ConfirmationsRecorded prometheus.Counter
	AutoConfirms          prometheus.Counter
	CacheInvalidations    prometheus.Counter
	ReplayRuns            prometheus.Counter
	PipelineDuration      prometheus.Histogram
	NotificationsSent     prometheus.Counter
	NotificationsFailed   prometheus.Counter
	StartupTimeSeconds    prometheus.Gauge
}
