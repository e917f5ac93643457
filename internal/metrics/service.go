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
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_matches_completed_total",
			Help: "The total number of matches that reached a decided winner.",
		}),
		RatingsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_ratings_applied_total",
			Help: "The total number of matches for which ratings were applied.",
		}),
		RatingSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_rating_skips_total",
			Help: "Rating applications skipped, by precondition.",
		}, []string{"reason"}),
		ConfirmationsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_confirmations_recorded_total",
			Help: "The total number of result confirmations recorded.",
		}),
		AutoConfirms: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_auto_confirms_total",
			Help: "The total number of matches confirmed automatically.",
		}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_cache_invalidations_total",
			Help: "The total number of cache invalidation passes.",
		}),
		ReplayRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_replay_runs_total",
			Help: "The total number of rating replay runs.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ttstats_pipeline_duration_seconds",
			Help:    "The duration of individual pipeline invocations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ttstats_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCompleted,
		s.RatingsApplied,
		s.RatingSkips,
		s.ConfirmationsRecorded,
		s.AutoConfirms,
		s.CacheInvalidations,
		s.ReplayRuns,
		s.PipelineDuration,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) IncRatingsApplied() {
	s.RatingsApplied.Inc()
}

func (s *Service) IncRatingSkipped(reason string) {
	s.RatingSkips.WithLabelValues(reason).Inc()
}

func (s *Service) IncConfirmationsRecorded() {
	s.ConfirmationsRecorded.Inc()
}

func (s *Service) IncAutoConfirms() {
	s.AutoConfirms.Inc()
}

func (s *Service) IncCacheInvalidations() {
	s.CacheInvalidations.Inc()
}

func (s *Service) IncReplayRuns() {
	s.ReplayRuns.Inc()
}

func (s *Service) ObservePipelineDuration(duration float64) {
	s.PipelineDuration.Observe(duration)
}

func (s *Service) IncNotifSent() {
	s.NotificationsSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotificationsFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
