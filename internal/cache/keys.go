package cache

import "fmt"

// Global keys.
const (
	DashboardTotalMatchesKey  = "dashboard_total_matches"
	DashboardRecentMatchesKey = "dashboard_recent_matches"
	DashboardTotalPlayersKey  = "dashboard_total_players"

	// LeaderboardGenerationKey holds an integer counter with no expiry.
	// Bumping it logically invalidates every leaderboard variant at once:
	// consumers embed the current generation into their own keys.
	LeaderboardGenerationKey = "leaderboard_generation"
)

func PlayerStatsKey(playerID string) string {
	return fmt.Sprintf("player_stats:%s", playerID)
}

func PendingCountKey(playerID string) string {
	return fmt.Sprintf("pending_count:%s", playerID)
}

func SideStatsKey(sideID string) string {
	return fmt.Sprintf("side_stats:%s", sideID)
}

// HeadToHeadKey is keyed by the unordered pair of players.
func HeadToHeadKey(playerA, playerB string) string {
	if playerB < playerA {
		playerA, playerB = playerB, playerA
	}
	return fmt.Sprintf("h2h:%s:%s", playerA, playerB)
}

// LeaderboardKey embeds the generation so that bumping the counter
// invalidates every variant without enumeration.
func LeaderboardKey(generation int64) string {
	return fmt.Sprintf("leaderboard:%d", generation)
}
