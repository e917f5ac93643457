package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvoss/ttstats/internal/cache"
	"github.com/mvoss/ttstats/internal/league"
)

const (
	statsCacheTTL     = 5 * time.Minute
	dashboardCacheTTL = 1 * time.Minute
	recentMatchLimit  = 10
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// respondJSON is a helper to write a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response to JSON", "error", err)
	}
}

// cached runs a cache-aside read: on a hit, decode into out and report true;
// on a miss, the caller computes the value and stores it via the returned
// save function.
func (s *Server) cached(key string, ttl time.Duration, out any) (bool, func(v any)) {
	if raw, ok := s.Cache.Get(key); ok {
		if err := cache.Decode(raw, out); err == nil {
			return true, nil
		}
		log.Warn("Failed to decode cached value, treating as miss", "key", key)
	}
	return false, func(v any) {
		raw, err := cache.Encode(v)
		if err != nil {
			log.Error("Failed to encode value for cache", "key", key, "error", err)
			return
		}
		s.Cache.Set(key, raw, ttl)
	}
}

func (s *Server) UpsertPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p league.PlayerInfo
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if p.ID == "" || p.Name == "" {
			http.Error(w, "Player id and name are required", http.StatusBadRequest)
			return
		}

		if err := s.Store.UpsertPlayer(p); err != nil {
			log.Error("Failed to upsert player", "playerID", p.ID, "error", err)
			http.Error(w, "Failed to save player", http.StatusInternalServerError)
			return
		}
		s.Invalidator.InvalidatePlayer(p.ID)

		player, err := s.Store.GetPlayer(p.ID)
		if err != nil {
			http.Error(w, "Failed to load player", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, player)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			log.Error("Failed to get players from store", "error", err)
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")

		var stats league.PlayerStats
		hit, save := s.cached(cache.PlayerStatsKey(playerID), statsCacheTTL, &stats)
		if hit {
			respondJSON(w, http.StatusOK, stats)
			return
		}

		fresh, err := s.Store.PlayerStats(playerID)
		if err != nil {
			log.Warn("Failed to get player stats", "playerID", playerID, "error", err)
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		save(fresh)
		respondJSON(w, http.StatusOK, fresh)
	}
}

func (s *Server) PendingCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")

		var count int
		hit, save := s.cached(cache.PendingCountKey(playerID), statsCacheTTL, &count)
		if !hit {
			var err error
			count, err = s.Store.PendingCount(playerID)
			if err != nil {
				log.Error("Failed to get pending count", "playerID", playerID, "error", err)
				http.Error(w, "Failed to get pending count", http.StatusInternalServerError)
				return
			}
			save(count)
		}
		respondJSON(w, http.StatusOK, map[string]int{"pending": count})
	}
}

func (s *Server) RatingHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.PathValue("id")
		history, err := s.Store.RatingHistoryFor(playerID)
		if err != nil {
			log.Error("Failed to get rating history", "playerID", playerID, "error", err)
			http.Error(w, "Failed to get rating history", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, history)
	}
}

type createMatchRequest struct {
	SideA      []string `json:"side_a"`
	SideB      []string `json:"side_b"`
	BestOf     int      `json:"best_of"`
	Kind       string   `json:"kind"`
	DatePlayed int64    `json:"date_played"`
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if err := validateCreateMatch(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		kind := league.MatchKind(req.Kind)
		if req.Kind == "" {
			kind = league.KindCasual
		}
		datePlayed := req.DatePlayed
		if datePlayed == 0 {
			datePlayed = time.Now().Unix()
		}

		sideA, err := s.Store.CreateSide(req.SideA)
		if err != nil {
			log.Error("Failed to create side", "players", req.SideA, "error", err)
			http.Error(w, "Failed to create side", http.StatusBadRequest)
			return
		}
		sideB, err := s.Store.CreateSide(req.SideB)
		if err != nil {
			log.Error("Failed to create side", "players", req.SideB, "error", err)
			http.Error(w, "Failed to create side", http.StatusBadRequest)
			return
		}

		match, err := s.Store.CreateMatch(sideA.ID, sideB.ID, req.BestOf, kind, datePlayed)
		if err != nil {
			log.Error("Failed to create match", "error", err)
			http.Error(w, "Failed to create match", http.StatusInternalServerError)
			return
		}

		s.Invalidator.InvalidateMatch(match)
		respondJSON(w, http.StatusCreated, match)
	}
}

func validateCreateMatch(req createMatchRequest) error {
	if len(req.SideA) < 1 || len(req.SideA) > 2 || len(req.SideB) < 1 || len(req.SideB) > 2 {
		return fmt.Errorf("each side needs 1 or 2 players")
	}
	seen := make(map[string]bool)
	for _, id := range append(append([]string{}, req.SideA...), req.SideB...) {
		if seen[id] {
			return fmt.Errorf("player %s appears more than once", id)
		}
		seen[id] = true
	}
	if req.BestOf < 1 || req.BestOf%2 == 0 {
		return fmt.Errorf("best_of must be an odd number >= 1")
	}
	switch league.MatchKind(req.Kind) {
	case league.KindCasual, league.KindPractice, league.KindTournament, "":
	default:
		return fmt.Errorf("unknown match kind %q", req.Kind)
	}
	return nil
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.MatchesVisibleTo(actorFromContext(r))
		if err != nil {
			log.Error("Failed to get matches from store", "error", err)
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			return
		}
		if matches == nil {
			matches = []*league.Match{}
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, ok := s.visibleMatch(w, r)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

// visibleMatch loads the requested match and applies row-level visibility.
// A match the caller may not see is indistinguishable from a missing one.
func (s *Server) visibleMatch(w http.ResponseWriter, r *http.Request) (*league.Match, bool) {
	matchID := r.PathValue("id")
	match, err := s.Store.GetMatch(matchID)
	if err != nil {
		http.Error(w, "Match not found", http.StatusNotFound)
		return nil, false
	}

	actor := actorFromContext(r)
	if !actor.Staff && !match.SideA.Contains(actor.PlayerID) && !match.SideB.Contains(actor.PlayerID) {
		http.Error(w, "Match not found", http.StatusNotFound)
		return nil, false
	}
	return match, true
}

type gameRequest struct {
	GameNumber int `json:"game_number"`
	ScoreA     int `json:"score_a"`
	ScoreB     int `json:"score_b"`
}

func (s *Server) UpsertGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, ok := s.visibleMatch(w, r)
		if !ok {
			return
		}

		var req gameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.GameNumber < 1 {
			http.Error(w, "game_number must be >= 1", http.StatusBadRequest)
			return
		}
		if req.ScoreA < 0 || req.ScoreB < 0 {
			http.Error(w, "Scores must be non-negative", http.StatusBadRequest)
			return
		}
		if req.ScoreA == req.ScoreB {
			http.Error(w, "A game cannot end in a tie", http.StatusBadRequest)
			return
		}

		game := league.Game{GameNumber: req.GameNumber, ScoreA: req.ScoreA, ScoreB: req.ScoreB}
		if err := s.Store.UpsertGame(match.ID, game); err != nil {
			log.Error("Failed to upsert game", "matchID", match.ID, "error", err)
			http.Error(w, "Failed to save game", http.StatusInternalServerError)
			return
		}

		if err := s.Pipeline.ProcessGameSaved(match.ID, isDryRunFromContext(r)); err != nil {
			log.Error("Pipeline failed after game save", "matchID", match.ID, "error", err)
			http.Error(w, "Failed to process match", http.StatusInternalServerError)
			return
		}

		updated, err := s.Store.GetMatch(match.ID)
		if err != nil {
			http.Error(w, "Failed to load match", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, ok := s.visibleMatch(w, r)
		if !ok {
			return
		}

		gameNumber, err := strconv.Atoi(r.PathValue("n"))
		if err != nil || gameNumber < 1 {
			http.Error(w, "Invalid game number", http.StatusBadRequest)
			return
		}

		if err := s.Store.DeleteGame(match.ID, gameNumber); err != nil {
			log.Error("Failed to delete game", "matchID", match.ID, "gameNumber", gameNumber, "error", err)
			http.Error(w, "Failed to delete game", http.StatusInternalServerError)
			return
		}

		// A deleted game can revert the winner back to undecided.
		if err := s.Pipeline.ProcessGameSaved(match.ID, isDryRunFromContext(r)); err != nil {
			log.Error("Pipeline failed after game delete", "matchID", match.ID, "error", err)
			http.Error(w, "Failed to process match", http.StatusInternalServerError)
			return
		}

		updated, err := s.Store.GetMatch(match.ID)
		if err != nil {
			http.Error(w, "Failed to load match", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r)
		if actor.PlayerID == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		match, ok := s.visibleMatch(w, r)
		if !ok {
			return
		}

		if err := s.Pipeline.ProcessConfirmation(match.ID, actor.PlayerID, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to process confirmation", "matchID", match.ID, "playerID", actor.PlayerID, "error", err)
			http.Error(w, "Failed to confirm match", http.StatusInternalServerError)
			return
		}

		updated, err := s.Store.GetMatch(match.ID)
		if err != nil {
			http.Error(w, "Failed to load match", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

// LeaderboardHandler serves the rating leaderboard. The cache key embeds the
// current generation, so a bumped counter makes every cached variant a miss
// without enumerating keys.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := cache.LeaderboardKey(s.Invalidator.LeaderboardGeneration())

		var stats []league.PlayerStats
		hit, save := s.cached(key, statsCacheTTL, &stats)
		if hit {
			respondJSON(w, http.StatusOK, stats)
			return
		}

		stats, err := s.Store.Leaderboard()
		if err != nil {
			log.Error("Failed to get leaderboard from store", "error", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		save(stats)
		respondJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) HeadToHeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerA := r.URL.Query().Get("a")
		playerB := r.URL.Query().Get("b")
		if playerA == "" || playerB == "" || playerA == playerB {
			http.Error(w, "Query parameters 'a' and 'b' must name two distinct players", http.StatusBadRequest)
			return
		}

		var h2h league.HeadToHead
		hit, save := s.cached(cache.HeadToHeadKey(playerA, playerB), statsCacheTTL, &h2h)
		if hit {
			respondJSON(w, http.StatusOK, h2h)
			return
		}

		fresh, err := s.Store.HeadToHead(playerA, playerB)
		if err != nil {
			log.Error("Failed to get head-to-head", "a", playerA, "b", playerB, "error", err)
			http.Error(w, "Failed to get head-to-head", http.StatusInternalServerError)
			return
		}
		save(fresh)
		respondJSON(w, http.StatusOK, fresh)
	}
}

type dashboardResponse struct {
	TotalMatches  int             `json:"total_matches"`
	TotalPlayers  int             `json:"total_players"`
	RecentMatches []*league.Match `json:"recent_matches"`
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp dashboardResponse

		hit, save := s.cached(cache.DashboardTotalMatchesKey, dashboardCacheTTL, &resp.TotalMatches)
		if !hit {
			total, err := s.Store.TotalMatches()
			if err != nil {
				http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
				return
			}
			resp.TotalMatches = total
			save(total)
		}

		hit, save = s.cached(cache.DashboardTotalPlayersKey, dashboardCacheTTL, &resp.TotalPlayers)
		if !hit {
			total, err := s.Store.TotalPlayers()
			if err != nil {
				http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
				return
			}
			resp.TotalPlayers = total
			save(total)
		}

		hit, save = s.cached(cache.DashboardRecentMatchesKey, dashboardCacheTTL, &resp.RecentMatches)
		if !hit {
			recent, err := s.Store.RecentMatches(recentMatchLimit)
			if err != nil {
				http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
				return
			}
			resp.RecentMatches = recent
			save(recent)
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) RecalculateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		log.Info("Starting rating recalculation...", "dryRun", isDryRun)

		summary, err := s.Pipeline.Recalculate(isDryRun)
		if err != nil {
			log.Error("Recalculation failed", "error", err)
			http.Error(w, "Recalculation failed", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) ClearCacheHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear cache")
		s.Cache.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Cache cleared!")
	}
}
