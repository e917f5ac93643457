package league_test

import (
	"database/sql"
	"testing"

	"github.com/mvoss/ttstats/internal/database"
	"github.com/mvoss/ttstats/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	store := league.New(db)
	return store, db, dbTeardown
}

func addPlayers(t *testing.T, store league.LeagueStore, players ...league.PlayerInfo) {
	t.Helper()
	for _, p := range players {
		require.NoError(t, store.UpsertPlayer(p))
	}
}

// confirmedSingles creates a decided, fully confirmed singles match, ready
// for rating.
func confirmedSingles(t *testing.T, store league.LeagueStore, winnerID, loserID string, datePlayed int64) *league.Match {
	t.Helper()

	sideA, err := store.CreateSide([]string{winnerID})
	require.NoError(t, err)
	sideB, err := store.CreateSide([]string{loserID})
	require.NoError(t, err)

	match, err := store.CreateMatch(sideA.ID, sideB.ID, 5, league.KindCasual, datePlayed)
	require.NoError(t, err)

	require.NoError(t, store.SetMatchOutcome(match.ID, &sideA.ID, 3, 0))
	require.NoError(t, store.InsertConfirmations(match.ID, []string{winnerID, loserID}))
	require.NoError(t, store.SetFullyConfirmed(match.ID, true))

	match, err = store.GetMatch(match.ID)
	require.NoError(t, err)
	return match
}

func TestUpsertPlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store, league.PlayerInfo{ID: "p1", Name: "Player One", Email: "one@club.org"})

	p, err := store.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, 1500, p.Rating)
	assert.Equal(t, 1500, p.PeakRating)
	assert.False(t, p.EmailVerified)

	// Re-upserting updates the profile but never the rating fields.
	require.NoError(t, store.UpsertPlayer(league.PlayerInfo{ID: "p1", Name: "Renamed", EmailVerified: true}))
	p, err = store.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, 1500, p.Rating)

	_, err = store.GetPlayer("missing")
	assert.Error(t, err)
}

func TestSetEmailVerified(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store, league.PlayerInfo{ID: "p1", Name: "Player One"})
	require.NoError(t, store.SetEmailVerified("p1", true))

	p, err := store.GetPlayer("p1")
	require.NoError(t, err)
	assert.True(t, p.EmailVerified)
}

func TestCreateSideReusesIdenticalRoster(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
		league.PlayerInfo{ID: "p3", Name: "Three"},
	)

	side1, err := store.CreateSide([]string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, side1.Players, 2)

	// Same roster in a different order is the same side.
	side2, err := store.CreateSide([]string{"p2", "p1"})
	require.NoError(t, err)
	assert.Equal(t, side1.ID, side2.ID)

	// A subset or superset is a different side.
	solo, err := store.CreateSide([]string{"p1"})
	require.NoError(t, err)
	assert.NotEqual(t, side1.ID, solo.ID)

	other, err := store.CreateSide([]string{"p1", "p3"})
	require.NoError(t, err)
	assert.NotEqual(t, side1.ID, other.ID)

	_, err = store.CreateSide(nil)
	assert.Error(t, err)
	_, err = store.CreateSide([]string{"p1", "p2", "p3"})
	assert.Error(t, err)
}

func TestCreateMatchValidatesBestOf(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
	)
	sideA, err := store.CreateSide([]string{"p1"})
	require.NoError(t, err)
	sideB, err := store.CreateSide([]string{"p2"})
	require.NoError(t, err)

	_, err = store.CreateMatch(sideA.ID, sideB.ID, 4, league.KindCasual, 0)
	assert.Error(t, err)
	_, err = store.CreateMatch(sideA.ID, sideB.ID, 0, league.KindCasual, 0)
	assert.Error(t, err)

	match, err := store.CreateMatch(sideA.ID, sideB.ID, 1, league.KindPractice, 0)
	require.NoError(t, err)
	assert.Nil(t, match.WinnerSideID)
	assert.False(t, match.IsFullyConfirmed)
	assert.True(t, match.IsSingles())
}

func TestUpsertGameUpdatesScores(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
	)
	sideA, _ := store.CreateSide([]string{"p1"})
	sideB, _ := store.CreateSide([]string{"p2"})
	match, err := store.CreateMatch(sideA.ID, sideB.ID, 3, league.KindCasual, 0)
	require.NoError(t, err)

	require.NoError(t, store.UpsertGame(match.ID, league.Game{GameNumber: 1, ScoreA: 11, ScoreB: 9}))
	require.NoError(t, store.UpsertGame(match.ID, league.Game{GameNumber: 1, ScoreA: 12, ScoreB: 10}))
	require.NoError(t, store.UpsertGame(match.ID, league.Game{GameNumber: 2, ScoreA: 3, ScoreB: 11}))

	games, err := store.GetGames(match.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, 12, games[0].ScoreA)
	assert.Equal(t, 10, games[0].ScoreB)

	require.NoError(t, store.DeleteGame(match.ID, 2))
	games, err = store.GetGames(match.ID)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestInsertConfirmationsIsIdempotent(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
	)
	sideA, _ := store.CreateSide([]string{"p1"})
	sideB, _ := store.CreateSide([]string{"p2"})
	match, err := store.CreateMatch(sideA.ID, sideB.ID, 5, league.KindCasual, 0)
	require.NoError(t, err)

	require.NoError(t, store.InsertConfirmations(match.ID, []string{"p1"}))
	// Manual and auto confirmation can race; duplicates must not error.
	require.NoError(t, store.InsertConfirmations(match.ID, []string{"p1", "p2"}))

	confirmations, err := store.GetConfirmations(match.ID)
	require.NoError(t, err)
	assert.Len(t, confirmations, 2)
}

func TestApplyRatingEligibility(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One", RatedMatchCount: 25},
		league.PlayerInfo{ID: "p2", Name: "Two", RatedMatchCount: 25},
	)
	sideA, _ := store.CreateSide([]string{"p1"})
	sideB, _ := store.CreateSide([]string{"p2"})
	match, err := store.CreateMatch(sideA.ID, sideB.ID, 5, league.KindCasual, 0)
	require.NoError(t, err)

	// No winner yet.
	result, err := store.ApplyRating(match.ID)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, league.SkipNoWinner, result.Reason)

	// Winner set but not confirmed.
	require.NoError(t, store.SetMatchOutcome(match.ID, &sideA.ID, 3, 1))
	result, err = store.ApplyRating(match.ID)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, league.SkipNotConfirmed, result.Reason)

	p1, _ := store.GetPlayer("p1")
	assert.Equal(t, 1500, p1.Rating, "skips never mutate ratings")

	// Confirmed: the rating applies once.
	require.NoError(t, store.InsertConfirmations(match.ID, []string{"p1", "p2"}))
	require.NoError(t, store.SetFullyConfirmed(match.ID, true))
	result, err = store.ApplyRating(match.ID)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	p1, _ = store.GetPlayer("p1")
	p2, _ := store.GetPlayer("p2")
	assert.Equal(t, 1516, p1.Rating)
	assert.Equal(t, 1484, p2.Rating)

	// The second invocation is the idempotency guard at work.
	result, err = store.ApplyRating(match.ID)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, league.SkipAlreadyRated, result.Reason)

	p1, _ = store.GetPlayer("p1")
	assert.Equal(t, 1516, p1.Rating)
	history, err := store.RatingHistoryFor("p1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, 1500, history[0].OldRating)
	assert.Equal(t, 1516, history[0].NewRating)
	assert.Equal(t, 32.0, history[0].KFactor)
}

func TestMatchesVisibleTo(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
		league.PlayerInfo{ID: "p3", Name: "Three"},
	)
	confirmedSingles(t, store, "p1", "p2", 100)
	confirmedSingles(t, store, "p2", "p3", 200)

	// Anonymous callers see nothing.
	matches, err := store.MatchesVisibleTo(league.Actor{})
	require.NoError(t, err)
	assert.Empty(t, matches)

	// A player sees only their own matches.
	matches, err = store.MatchesVisibleTo(league.Actor{PlayerID: "p1", Authenticated: true})
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = store.MatchesVisibleTo(league.Actor{PlayerID: "p2", Authenticated: true})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// Staff and the pipeline see everything.
	matches, err = store.MatchesVisibleTo(league.FullVisibility)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestReplayRatingsIsDeterministic(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
	)
	confirmedSingles(t, store, "p1", "p2", 100)
	confirmedSingles(t, store, "p2", "p1", 200)
	confirmedSingles(t, store, "p1", "p2", 300)

	summary, err := store.ReplayRatings(false)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.MatchesProcessed)

	p1, _ := store.GetPlayer("p1")
	p2, _ := store.GetPlayer("p2")
	firstRun := []int{p1.Rating, p2.Rating}

	history1, err := store.RatingHistoryFor("p1")
	require.NoError(t, err)

	// Replaying again reproduces identical state.
	summary, err = store.ReplayRatings(false)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.MatchesProcessed)
	assert.Equal(t, 6, summary.HistoryDeleted)
	assert.Equal(t, 2, summary.PlayersReset)

	p1, _ = store.GetPlayer("p1")
	p2, _ = store.GetPlayer("p2")
	assert.Equal(t, firstRun, []int{p1.Rating, p2.Rating})
	assert.Equal(t, 3, p1.RatedMatchCount)

	history2, err := store.RatingHistoryFor("p1")
	require.NoError(t, err)
	require.Len(t, history2, len(history1))
	for i := range history1 {
		assert.Equal(t, history1[i].OldRating, history2[i].OldRating)
		assert.Equal(t, history1[i].NewRating, history2[i].NewRating)
		assert.Equal(t, history1[i].RatingChange, history2[i].RatingChange)
	}
}

func TestReplayRatingsOrderMatters(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
	)
	m1 := confirmedSingles(t, store, "p1", "p2", 100)
	confirmedSingles(t, store, "p2", "p1", 200)
	confirmedSingles(t, store, "p1", "p2", 300)

	_, err := store.ReplayRatings(false)
	require.NoError(t, err)
	p1, _ := store.GetPlayer("p1")
	inOrder := p1.Rating

	// Move the first match to the end of the timeline. Elo is path
	// dependent, so the final ratings must change.
	_, err = db.Exec("UPDATE matches SET date_played = 400 WHERE id = ?", m1.ID)
	require.NoError(t, err)

	_, err = store.ReplayRatings(false)
	require.NoError(t, err)
	p1, _ = store.GetPlayer("p1")
	assert.NotEqual(t, inOrder, p1.Rating)
}

func TestReplayRatingsDryRun(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	addPlayers(t, store,
		league.PlayerInfo{ID: "p1", Name: "One"},
		league.PlayerInfo{ID: "p2", Name: "Two"},
	)
	match := confirmedSingles(t, store, "p1", "p2", 100)
	result, err := store.ApplyRating(match.ID)
	require.NoError(t, err)
	require.True(t, result.Applied)

	p1Before, _ := store.GetPlayer("p1")

	summary, err := store.ReplayRatings(true)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.MatchesProcessed)
	assert.Equal(t, 2, summary.HistoryDeleted)
	assert.Equal(t, 2, summary.PlayersReset)

	p1After, _ := store.GetPlayer("p1")
	assert.Equal(t, p1Before.Rating, p1After.Rating)
	history, err := store.RatingHistoryFor("p1")
	require.NoError(t, err)
	assert.Len(t, history, 1, "dry run deletes nothing")
}
