package league

import "sync"

// Mock is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use. Each method records its calls and defers
// to the corresponding Func spy when one is set.
type Mock struct {
	mu sync.Mutex

	UpsertPlayerFunc         func(p PlayerInfo) error
	SetEmailVerifiedFunc     func(playerID string, verified bool) error
	GetPlayerFunc            func(playerID string) (*PlayerInfo, error)
	GetAllPlayersFunc        func() ([]PlayerInfo, error)
	CreateSideFunc           func(playerIDs []string) (*Side, error)
	GetSideFunc              func(sideID string) (*Side, error)
	CreateMatchFunc          func(sideAID, sideBID string, bestOf int, kind MatchKind, datePlayed int64) (*Match, error)
	GetMatchFunc             func(matchID string) (*Match, error)
	MatchesVisibleToFunc     func(actor Actor) ([]*Match, error)
	RecentMatchesFunc        func(limit int) ([]*Match, error)
	UpsertGameFunc           func(matchID string, g Game) error
	DeleteGameFunc           func(matchID string, gameNumber int) error
	GetGamesFunc             func(matchID string) ([]Game, error)
	SetMatchOutcomeFunc      func(matchID string, winnerSideID *string, scoreA, scoreB int) error
	SetFullyConfirmedFunc    func(matchID string, confirmed bool) error
	InsertConfirmationsFunc  func(matchID string, playerIDs []string) error
	GetConfirmationsFunc     func(matchID string) ([]Confirmation, error)
	HasRatingHistoryFunc     func(matchID string) (bool, error)
	RatingHistoryForFunc     func(playerID string) ([]RatingHistory, error)
	ApplyRatingFunc          func(matchID string) (ApplyResult, error)
	ReplayRatingsFunc        func(dryRun bool) (ReplaySummary, error)
	LeaderboardFunc          func() ([]PlayerStats, error)
	PlayerStatsFunc          func(playerID string) (*PlayerStats, error)
	PendingCountFunc         func(playerID string) (int, error)
	HeadToHeadFunc           func(playerA, playerB string) (*HeadToHead, error)
	TotalMatchesFunc         func() (int, error)
	TotalPlayersFunc         func() (int, error)

	// Call records
	UpsertPlayerCalls        []PlayerInfo
	UpsertGameCalls          []UpsertGameCall
	SetMatchOutcomeCalls     []SetMatchOutcomeCall
	SetFullyConfirmedCalls   []SetFullyConfirmedCall
	InsertConfirmationsCalls []InsertConfirmationsCall
	ApplyRatingCalls         []string
	ReplayRatingsCalls       []bool
}

type UpsertGameCall struct {
	MatchID string
	Game    Game
}

type SetMatchOutcomeCall struct {
	MatchID      string
	WinnerSideID *string
	ScoreA       int
	ScoreB       int
}

type SetFullyConfirmedCall struct {
	MatchID   string
	Confirmed bool
}

type InsertConfirmationsCall struct {
	MatchID   string
	PlayerIDs []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = nil
	m.UpsertGameCalls = nil
	m.SetMatchOutcomeCalls = nil
	m.SetFullyConfirmedCalls = nil
	m.InsertConfirmationsCalls = nil
	m.ApplyRatingCalls = nil
	m.ReplayRatingsCalls = nil
}

func (m *Mock) UpsertPlayer(p PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, p)
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(p)
	}
	return nil
}

func (m *Mock) SetEmailVerified(playerID string, verified bool) error {
	if m.SetEmailVerifiedFunc != nil {
		return m.SetEmailVerifiedFunc(playerID, verified)
	}
	return nil
}

func (m *Mock) GetPlayer(playerID string) (*PlayerInfo, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return &PlayerInfo{ID: playerID}, nil
}

func (m *Mock) GetAllPlayers() ([]PlayerInfo, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *Mock) CreateSide(playerIDs []string) (*Side, error) {
	if m.CreateSideFunc != nil {
		return m.CreateSideFunc(playerIDs)
	}
	return &Side{}, nil
}

func (m *Mock) GetSide(sideID string) (*Side, error) {
	if m.GetSideFunc != nil {
		return m.GetSideFunc(sideID)
	}
	return &Side{ID: sideID}, nil
}

func (m *Mock) CreateMatch(sideAID, sideBID string, bestOf int, kind MatchKind, datePlayed int64) (*Match, error) {
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(sideAID, sideBID, bestOf, kind, datePlayed)
	}
	return &Match{}, nil
}

func (m *Mock) GetMatch(matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return &Match{ID: matchID}, nil
}

func (m *Mock) MatchesVisibleTo(actor Actor) ([]*Match, error) {
	if m.MatchesVisibleToFunc != nil {
		return m.MatchesVisibleToFunc(actor)
	}
	return nil, nil
}

func (m *Mock) RecentMatches(limit int) ([]*Match, error) {
	if m.RecentMatchesFunc != nil {
		return m.RecentMatchesFunc(limit)
	}
	return nil, nil
}

func (m *Mock) UpsertGame(matchID string, g Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertGameCalls = append(m.UpsertGameCalls, UpsertGameCall{MatchID: matchID, Game: g})
	if m.UpsertGameFunc != nil {
		return m.UpsertGameFunc(matchID, g)
	}
	return nil
}

func (m *Mock) DeleteGame(matchID string, gameNumber int) error {
	if m.DeleteGameFunc != nil {
		return m.DeleteGameFunc(matchID, gameNumber)
	}
	return nil
}

func (m *Mock) GetGames(matchID string) ([]Game, error) {
	if m.GetGamesFunc != nil {
		return m.GetGamesFunc(matchID)
	}
	return nil, nil
}

func (m *Mock) SetMatchOutcome(matchID string, winnerSideID *string, scoreA, scoreB int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetMatchOutcomeCalls = append(m.SetMatchOutcomeCalls, SetMatchOutcomeCall{
		MatchID: matchID, WinnerSideID: winnerSideID, ScoreA: scoreA, ScoreB: scoreB,
	})
	if m.SetMatchOutcomeFunc != nil {
		return m.SetMatchOutcomeFunc(matchID, winnerSideID, scoreA, scoreB)
	}
	return nil
}

func (m *Mock) SetFullyConfirmed(matchID string, confirmed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetFullyConfirmedCalls = append(m.SetFullyConfirmedCalls, SetFullyConfirmedCall{
		MatchID: matchID, Confirmed: confirmed,
	})
	if m.SetFullyConfirmedFunc != nil {
		return m.SetFullyConfirmedFunc(matchID, confirmed)
	}
	return nil
}

func (m *Mock) InsertConfirmations(matchID string, playerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertConfirmationsCalls = append(m.InsertConfirmationsCalls, InsertConfirmationsCall{
		MatchID: matchID, PlayerIDs: playerIDs,
	})
	if m.InsertConfirmationsFunc != nil {
		return m.InsertConfirmationsFunc(matchID, playerIDs)
	}
	return nil
}

func (m *Mock) GetConfirmations(matchID string) ([]Confirmation, error) {
	if m.GetConfirmationsFunc != nil {
		return m.GetConfirmationsFunc(matchID)
	}
	return nil, nil
}

func (m *Mock) HasRatingHistory(matchID string) (bool, error) {
	if m.HasRatingHistoryFunc != nil {
		return m.HasRatingHistoryFunc(matchID)
	}
	return false, nil
}

func (m *Mock) RatingHistoryFor(playerID string) ([]RatingHistory, error) {
	if m.RatingHistoryForFunc != nil {
		return m.RatingHistoryForFunc(playerID)
	}
	return nil, nil
}

func (m *Mock) ApplyRating(matchID string) (ApplyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyRatingCalls = append(m.ApplyRatingCalls, matchID)
	if m.ApplyRatingFunc != nil {
		return m.ApplyRatingFunc(matchID)
	}
	return ApplyResult{}, nil
}

func (m *Mock) ReplayRatings(dryRun bool) (ReplaySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplayRatingsCalls = append(m.ReplayRatingsCalls, dryRun)
	if m.ReplayRatingsFunc != nil {
		return m.ReplayRatingsFunc(dryRun)
	}
	return ReplaySummary{DryRun: dryRun}, nil
}

func (m *Mock) Leaderboard() ([]PlayerStats, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc()
	}
	return nil, nil
}

func (m *Mock) PlayerStats(playerID string) (*PlayerStats, error) {
	if m.PlayerStatsFunc != nil {
		return m.PlayerStatsFunc(playerID)
	}
	return &PlayerStats{PlayerID: playerID}, nil
}

func (m *Mock) PendingCount(playerID string) (int, error) {
	if m.PendingCountFunc != nil {
		return m.PendingCountFunc(playerID)
	}
	return 0, nil
}

func (m *Mock) HeadToHead(playerA, playerB string) (*HeadToHead, error) {
	if m.HeadToHeadFunc != nil {
		return m.HeadToHeadFunc(playerA, playerB)
	}
	return &HeadToHead{PlayerA: playerA, PlayerB: playerB}, nil
}

func (m *Mock) TotalMatches() (int, error) {
	if m.TotalMatchesFunc != nil {
		return m.TotalMatchesFunc()
	}
	return 0, nil
}

func (m *Mock) TotalPlayers() (int, error) {
	if m.TotalPlayersFunc != nil {
		return m.TotalPlayersFunc()
	}
	return 0, nil
}

var _ LeagueStore = (*Mock)(nil)
