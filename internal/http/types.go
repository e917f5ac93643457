package http

import (
	"net/http"

	"github.com/mvoss/ttstats/internal/cache"
	"github.com/mvoss/ttstats/internal/config"
	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/metrics"
	"github.com/mvoss/ttstats/internal/pipeline"
)

type Server struct {
	Store          league.LeagueStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Pipeline       pipeline.MatchPipeline
	Cache          cache.Store
	Invalidator    *cache.Invalidator
	Router         *http.ServeMux
}
