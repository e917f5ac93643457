package league

// LeagueStore defines the interface for interacting with the league's data.
type LeagueStore interface {
	UpsertPlayer(p PlayerInfo) error
	SetEmailVerified(playerID string, verified bool) error
	GetPlayer(playerID string) (*PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)

	// CreateSide returns the existing side for an identical roster, or
	// creates a new one. Rosters are immutable.
	CreateSide(playerIDs []string) (*Side, error)
	GetSide(sideID string) (*Side, error)

	CreateMatch(sideAID, sideBID string, bestOf int, kind MatchKind, datePlayed int64) (*Match, error)
	GetMatch(matchID string) (*Match, error)
	MatchesVisibleTo(actor Actor) ([]*Match, error)
	RecentMatches(limit int) ([]*Match, error)

	UpsertGame(matchID string, g Game) error
	DeleteGame(matchID string, gameNumber int) error
	GetGames(matchID string) ([]Game, error)

	SetMatchOutcome(matchID string, winnerSideID *string, scoreA, scoreB int) error
	SetFullyConfirmed(matchID string, confirmed bool) error

	// InsertConfirmations is duplicate-tolerant: rows that already exist
	// are silently skipped so manual and auto confirmation can race.
	InsertConfirmations(matchID string, playerIDs []string) error
	GetConfirmations(matchID string) ([]Confirmation, error)

	HasRatingHistory(matchID string) (bool, error)
	RatingHistoryFor(playerID string) ([]RatingHistory, error)

	// ApplyRating rates the match if it is eligible, inside one
	// transaction. Preconditions not met are reported as skips.
	ApplyRating(matchID string) (ApplyResult, error)
	// ReplayRatings resets every player and replays all confirmed
	// matches chronologically. Dry-run only counts.
	ReplayRatings(dryRun bool) (ReplaySummary, error)

	Leaderboard() ([]PlayerStats, error)
	PlayerStats(playerID string) (*PlayerStats, error)
	PendingCount(playerID string) (int, error)
	HeadToHead(playerA, playerB string) (*HeadToHead, error)
	TotalMatches() (int, error)
	TotalPlayers() (int, error)
}
