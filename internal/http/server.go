package http

import (
	"net/http"

	"github.com/mvoss/ttstats/internal/cache"
	"github.com/mvoss/ttstats/internal/config"
	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/metrics"
	"github.com/mvoss/ttstats/internal/pipeline"
)

func NewServer(store league.LeagueStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, matchPipeline pipeline.MatchPipeline, cacheStore cache.Store, invalidator *cache.Invalidator) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Pipeline:       matchPipeline,
		Cache:          cacheStore,
		Invalidator:    invalidator,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// actorMiddleware resolves the caller's identity for row-level match
	// visibility; paramsMiddleware handles shared query parameters.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("POST /players", Chain(s.UpsertPlayerHandler(), paramsMiddleware))
	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/pending", Chain(s.PendingCountHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/history", Chain(s.RatingHistoryHandler(), paramsMiddleware))

	s.Router.Handle("POST /matches", Chain(s.CreateMatchHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /matches/{id}/games", Chain(s.UpsertGameHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("DELETE /matches/{id}/games/{n}", Chain(s.DeleteGameHandler(), paramsMiddleware, actorMiddleware))
	s.Router.Handle("POST /matches/{id}/confirm", Chain(s.ConfirmMatchHandler(), paramsMiddleware, actorMiddleware))

	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /h2h", Chain(s.HeadToHeadHandler(), paramsMiddleware))
	s.Router.Handle("GET /dashboard", Chain(s.DashboardHandler(), paramsMiddleware))

	s.Router.Handle("POST /recalculate", Chain(s.RecalculateHandler(), paramsMiddleware))
	s.Router.Handle("POST /cache/clear", Chain(s.ClearCacheHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
