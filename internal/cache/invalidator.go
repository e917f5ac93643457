package cache

import (
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mvoss/ttstats/internal/league"
)

// Invalidator drops the derived-view cache entries affected by a match or
// player mutation. Purely additive/destructive on the store: invalidating
// redundantly is always safe.
type Invalidator struct {
	store Store
}

// NewInvalidator creates an Invalidator over the given store.
func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// InvalidateMatch drops every cache entry derived from this match: per-player
// stats and pending counts, side aggregates, the head-to-head pair for
// singles, the dashboard keys, and the whole leaderboard family via the
// generation counter.
func (i *Invalidator) InvalidateMatch(m *league.Match) {
	var keys []string

	for _, p := range m.Players() {
		keys = append(keys, PlayerStatsKey(p.ID), PendingCountKey(p.ID))
	}

	keys = append(keys, SideStatsKey(m.SideA.ID), SideStatsKey(m.SideB.ID))

	if m.IsSingles() {
		keys = append(keys, HeadToHeadKey(m.SideA.Players[0].ID, m.SideB.Players[0].ID))
	}

	keys = append(keys, DashboardTotalMatchesKey, DashboardRecentMatchesKey)

	i.store.DeleteMany(keys)
	i.BumpLeaderboard()
	log.Debug("Invalidated match caches", "matchID", m.ID, "keys", len(keys))
}

// InvalidatePlayer drops the caches derived from one player's record.
func (i *Invalidator) InvalidatePlayer(playerID string) {
	i.store.DeleteMany([]string{
		PlayerStatsKey(playerID),
		DashboardTotalPlayersKey,
	})
	i.BumpLeaderboard()
	log.Debug("Invalidated player caches", "playerID", playerID)
}

// BumpLeaderboard advances the leaderboard generation counter.
func (i *Invalidator) BumpLeaderboard() {
	i.store.Increment(LeaderboardGenerationKey)
}

// LeaderboardGeneration reads the current generation without bumping it.
// A missing counter reads as 0.
func (i *Invalidator) LeaderboardGeneration() int64 {
	raw, ok := i.store.Get(LeaderboardGenerationKey)
	if !ok {
		return 0
	}
	generation, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return generation
}
