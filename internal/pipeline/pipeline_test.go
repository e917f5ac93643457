package pipeline_test

import (
	"testing"

	"github.com/mvoss/ttstats/internal/cache"
	"github.com/mvoss/ttstats/internal/database"
	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/metrics"
	"github.com/mvoss/ttstats/internal/notifier"
	"github.com/mvoss/ttstats/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	store    league.LeagueStore
	proc     *pipeline.Processor
	notifier *notifier.Mock
	metrics  *metrics.Mock
	cache    *cache.MockStore
}

func setupPipeline(t *testing.T) (*pipelineFixture, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	f := &pipelineFixture{
		store:    league.New(db),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		cache:    cache.NewMockStore(),
	}
	f.proc = pipeline.NewProcessor(f.store, f.notifier, cache.NewInvalidator(f.cache), f.metrics)

	return f, dbTeardown
}

// newMatch registers the two players and creates a singles match between them.
func newMatch(t *testing.T, store league.LeagueStore, a, b league.PlayerInfo, bestOf int, kind league.MatchKind) *league.Match {
	t.Helper()

	require.NoError(t, store.UpsertPlayer(a))
	require.NoError(t, store.UpsertPlayer(b))

	sideA, err := store.CreateSide([]string{a.ID})
	require.NoError(t, err)
	sideB, err := store.CreateSide([]string{b.ID})
	require.NoError(t, err)

	match, err := store.CreateMatch(sideA.ID, sideB.ID, bestOf, kind, 1700000000)
	require.NoError(t, err)
	return match
}

func addGames(t *testing.T, f *pipelineFixture, matchID string, games ...league.Game) {
	t.Helper()
	for _, g := range games {
		require.NoError(t, f.store.UpsertGame(matchID, g))
		require.NoError(t, f.proc.ProcessGameSaved(matchID, false))
	}
}

func sweep(score int) []league.Game {
	games := make([]league.Game, 3)
	for i := range games {
		games[i] = league.Game{GameNumber: i + 1, ScoreA: 11, ScoreB: score}
	}
	return games
}

func TestFullConfirmationFlow(t *testing.T) {
	f, teardown := setupPipeline(t)
	defer teardown()

	a := league.PlayerInfo{ID: "alice", Name: "Alice", Email: "alice@club.org", EmailVerified: true, RatedMatchCount: 25}
	b := league.PlayerInfo{ID: "bob", Name: "Bob", Email: "bob@club.org", EmailVerified: true, RatedMatchCount: 25}
	match := newMatch(t, f.store, a, b, 5, league.KindCasual)

	addGames(t, f, match.ID, sweep(5)...)

	// The match completed: winner persisted, both verified players asked
	// to confirm, result announced, but no rating yet.
	updated, err := f.store.GetMatch(match.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.WinnerSideID)
	assert.Equal(t, match.SideA.ID, *updated.WinnerSideID)
	assert.Equal(t, 3, updated.ScoreA)
	assert.Equal(t, 0, updated.ScoreB)
	assert.False(t, updated.IsFullyConfirmed)

	require.Len(t, f.notifier.ConfirmationNeededCalls, 2)
	notified := map[string]bool{}
	for _, call := range f.notifier.ConfirmationNeededCalls {
		notified[call.Player.ID] = true
	}
	assert.True(t, notified["alice"])
	assert.True(t, notified["bob"])
	assert.Len(t, f.notifier.ResultNotificationCalls, 1)
	assert.Equal(t, 1, f.metrics.MatchesCompletedCount)
	assert.Equal(t, 0, f.metrics.RatingsAppliedCount)

	// First confirmation: still pending.
	require.NoError(t, f.proc.ProcessConfirmation(match.ID, "alice", false))
	updated, err = f.store.GetMatch(match.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsFullyConfirmed)
	assert.Equal(t, 0, f.metrics.RatingsAppliedCount)

	// Second confirmation completes the match and applies the rating.
	require.NoError(t, f.proc.ProcessConfirmation(match.ID, "bob", false))
	updated, err = f.store.GetMatch(match.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsFullyConfirmed)
	assert.Equal(t, 1, f.metrics.RatingsAppliedCount)

	alice, err := f.store.GetPlayer("alice")
	require.NoError(t, err)
	bob, err := f.store.GetPlayer("bob")
	require.NoError(t, err)
	assert.Equal(t, 1516, alice.Rating)
	assert.Equal(t, 1484, bob.Rating)
	assert.Equal(t, 3000, alice.Rating+bob.Rating)
	assert.Equal(t, 1516, alice.PeakRating)
	assert.Equal(t, 1500, bob.PeakRating, "a loss never raises the peak")
	assert.Equal(t, 26, alice.RatedMatchCount)
	assert.Equal(t, 26, bob.RatedMatchCount)

	aliceHistory, err := f.store.RatingHistoryFor("alice")
	require.NoError(t, err)
	bobHistory, err := f.store.RatingHistoryFor("bob")
	require.NoError(t, err)
	assert.Len(t, aliceHistory, 1)
	assert.Len(t, bobHistory, 1)
	assert.Equal(t, 16, aliceHistory[0].RatingChange)
	assert.Equal(t, -16, bobHistory[0].RatingChange)

	// Confirming again is a harmless no-op.
	require.NoError(t, f.proc.ProcessConfirmation(match.ID, "bob", false))
	alice, err = f.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 1516, alice.Rating)
	assert.Equal(t, 26, alice.RatedMatchCount)
	assert.Equal(t, 1, f.metrics.RatingsAppliedCount)
	assert.Equal(t, 1, f.metrics.RatingSkipsByReason["already_rated"])
	assert.Len(t, f.notifier.ConfirmationNeededCalls, 2, "nobody is asked twice")
}

func TestAutoConfirmBothSidesUnverified(t *testing.T) {
	f, teardown := setupPipeline(t)
	defer teardown()

	a := league.PlayerInfo{ID: "p1", Name: "P One"}
	b := league.PlayerInfo{ID: "p2", Name: "P Two"}
	match := newMatch(t, f.store, a, b, 5, league.KindCasual)

	addGames(t, f, match.ID, sweep(7)...)

	updated, err := f.store.GetMatch(match.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsFullyConfirmed)
	assert.Empty(t, f.notifier.ConfirmationNeededCalls, "auto-confirmed matches notify nobody")
	assert.Equal(t, 1, f.metrics.AutoConfirmsCount)
	assert.Equal(t, 1, f.metrics.RatingsAppliedCount)

	confirmations, err := f.store.GetConfirmations(match.ID)
	require.NoError(t, err)
	assert.Len(t, confirmations, 2, "auto-confirm writes a row for every participant")
}

func TestAutoConfirmMixedVerification(t *testing.T) {
	f, teardown := setupPipeline(t)
	defer teardown()

	a := league.PlayerInfo{ID: "v1", Name: "Verified", EmailVerified: true}
	b := league.PlayerInfo{ID: "u1", Name: "Unverified"}
	match := newMatch(t, f.store, a, b, 5, league.KindCasual)

	addGames(t, f, match.ID, sweep(3)...)

	updated, err := f.store.GetMatch(match.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsFullyConfirmed)
	assert.Empty(t, f.notifier.ConfirmationNeededCalls)
	assert.Equal(t, 1, f.metrics.RatingsAppliedCount)
}

func TestGameDeletionRevertsWinner(t *testing.T) {
	f, teardown := setupPipeline(t)
	defer teardown()

	a := league.PlayerInfo{ID: "x", Name: "X", EmailVerified: true}
	b := league.PlayerInfo{ID: "y", Name: "Y", EmailVerified: true}
	match := newMatch(t, f.store, a, b, 3, league.KindCasual)

	addGames(t, f, match.ID,
		league.Game{GameNumber: 1, ScoreA: 11, ScoreB: 8},
		league.Game{GameNumber: 2, ScoreA: 11, ScoreB: 6},
	)

	updated, err := f.store.GetMatch(match.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.WinnerSideID)

	// One player confirms before the scoresheet gets corrected.
	require.NoError(t, f.proc.ProcessConfirmation(match.ID, "x", false))

	require.NoError(t, f.store.DeleteGame(match.ID, 2))
	require.NoError(t, f.proc.ProcessGameSaved(match.ID, false))

	updated, err = f.store.GetMatch(match.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.WinnerSideID, "removing the deciding game undecides the match")
	assert.Equal(t, 1, updated.ScoreA)
	assert.Equal(t, 0, updated.ScoreB)
	assert.False(t, updated.IsFullyConfirmed)

	// The confirmation is not silently revoked.
	confirmations, err := f.store.GetConfirmations(match.ID)
	require.NoError(t, err)
	assert.Len(t, confirmations, 1)
}

func TestRecalculate(t *testing.T) {
	f, teardown := setupPipeline(t)
	defer teardown()

	a := league.PlayerInfo{ID: "r1", Name: "R One"}
	b := league.PlayerInfo{ID: "r2", Name: "R Two"}
	match := newMatch(t, f.store, a, b, 5, league.KindCasual)
	addGames(t, f, match.ID, sweep(2)...)

	winner, err := f.store.GetPlayer("r1")
	require.NoError(t, err)
	ratedOnce := winner.Rating
	require.NotEqual(t, 1500, ratedOnce)

	// Dry run reports without touching anything.
	summary, err := f.proc.Recalculate(true)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.MatchesProcessed)
	assert.Equal(t, 2, summary.HistoryDeleted)
	winner, err = f.store.GetPlayer("r1")
	require.NoError(t, err)
	assert.Equal(t, ratedOnce, winner.Rating)

	// A real run rebuilds the same state from the match log and drops the
	// per-player caches.
	summary, err = f.proc.Recalculate(false)
	require.NoError(t, err)
	assert.False(t, summary.DryRun)
	winner, err = f.store.GetPlayer("r1")
	require.NoError(t, err)
	assert.Equal(t, ratedOnce, winner.Rating)
	assert.True(t, f.cache.Deleted(cache.PlayerStatsKey("r1")))
	assert.True(t, f.cache.Deleted(cache.PlayerStatsKey("r2")))
	assert.Equal(t, 2, f.metrics.ReplayRunsCount)
}
