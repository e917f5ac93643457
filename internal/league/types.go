package league

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// MatchKind describes how much a match matters for ratings.
type MatchKind string

const (
	KindCasual     MatchKind = "casual"
	KindPractice   MatchKind = "practice"
	KindTournament MatchKind = "tournament"
)

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	EmailVerified   bool   `json:"email_verified"`
	Rating          int    `json:"rating"`
	PeakRating      int    `json:"peak_rating"`
	RatedMatchCount int    `json:"rated_match_count"`
}

// Side is one or two players treated as a single competitive unit.
// Rosters are immutable; a different set of players is a different side.
type Side struct {
	ID      string       `json:"id"`
	Players []PlayerInfo `json:"players"`
}

// Contains reports whether the side's roster includes the given player.
func (s Side) Contains(playerID string) bool {
	for _, p := range s.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// Match is a best-of series of games between two sides.
type Match struct {
	ID               string    `json:"id"`
	SideA            Side      `json:"side_a"`
	SideB            Side      `json:"side_b"`
	BestOf           int       `json:"best_of"`
	Kind             MatchKind `json:"match_kind"`
	WinnerSideID     *string   `json:"winner_side_id"`
	IsFullyConfirmed bool      `json:"is_fully_confirmed"`
	ScoreA           int       `json:"score_a"`
	ScoreB           int       `json:"score_b"`
	DatePlayed       int64     `json:"date_played"`
	CreatedAt        int64     `json:"created_at"`
}

// Players returns every participant on both sides.
func (m *Match) Players() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(m.SideA.Players)+len(m.SideB.Players))
	players = append(players, m.SideA.Players...)
	players = append(players, m.SideB.Players...)
	return players
}

// IsSingles reports whether both sides field exactly one player.
func (m *Match) IsSingles() bool {
	return len(m.SideA.Players) == 1 && len(m.SideB.Players) == 1
}

// Game is a single game inside a match. Scores are raw points.
type Game struct {
	GameNumber int `json:"game_number"`
	ScoreA     int `json:"score_a"`
	ScoreB     int `json:"score_b"`
}

// Confirmation records that a player accepts a match's result.
type Confirmation struct {
	MatchID     string `json:"match_id"`
	PlayerID    string `json:"player_id"`
	ConfirmedAt int64  `json:"confirmed_at"`
}

// RatingHistory is an immutable audit row written when a match is rated.
// Its existence for a match is the marker that the match has been rated.
type RatingHistory struct {
	MatchID      string  `json:"match_id"`
	PlayerID     string  `json:"player_id"`
	OldRating    int     `json:"old_rating"`
	NewRating    int     `json:"new_rating"`
	RatingChange int     `json:"rating_change"`
	KFactor      float64 `json:"k_factor"`
	CreatedAt    int64   `json:"created_at"`
}

// SkipReason says why a rating application was a no-op.
type SkipReason string

const (
	SkipNoWinner     SkipReason = "no_winner"
	SkipNotConfirmed SkipReason = "not_confirmed"
	SkipAlreadyRated SkipReason = "already_rated"
)

// ApplyResult is the outcome of an ApplyRating call. A skip is not an error.
type ApplyResult struct {
	Applied bool       `json:"applied"`
	Reason  SkipReason `json:"reason,omitempty"`
}

// ReplaySummary reports what a rating replay did, or would do in dry-run mode.
type ReplaySummary struct {
	DryRun           bool `json:"dry_run"`
	MatchesProcessed int  `json:"matches_processed"`
	HistoryDeleted   int  `json:"history_deleted"`
	PlayersReset     int  `json:"players_reset"`
}

// Actor identifies who is asking, for row-level match visibility.
// The zero value is an anonymous caller and sees nothing.
type Actor struct {
	PlayerID      string
	Staff         bool
	Authenticated bool
}

// FullVisibility is used by the pipeline and batch jobs, which are invoked
// by the system rather than an end user.
var FullVisibility = Actor{Staff: true, Authenticated: true}

// PlayerStats is a denormalized per-player summary for leaderboards.
type PlayerStats struct {
	PlayerID        string  `json:"player_id"`
	PlayerName      string  `json:"player_name"`
	Rating          int     `json:"rating"`
	PeakRating      int     `json:"peak_rating"`
	RatedMatchCount int     `json:"rated_match_count"`
	MatchesPlayed   int     `json:"matches_played"`
	MatchesWon      int     `json:"matches_won"`
	MatchesLost     int     `json:"matches_lost"`
	WinPercentage   float64 `json:"win_percentage"`
}

// HeadToHead summarizes confirmed singles results between two players.
type HeadToHead struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	WinsA   int    `json:"wins_a"`
	WinsB   int    `json:"wins_b"`
	Total   int    `json:"total"`
}
