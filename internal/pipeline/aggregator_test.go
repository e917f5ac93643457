package pipeline_test

import (
	"testing"

	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestAggregateGamesBestOfFive(t *testing.T) {
	games := []league.Game{
		{GameNumber: 1, ScoreA: 11, ScoreB: 7},
		{GameNumber: 2, ScoreA: 5, ScoreB: 11},
		{GameNumber: 3, ScoreA: 11, ScoreB: 9},
	}

	out := pipeline.AggregateGames(games, 5)
	assert.False(t, out.Decided, "2-1 in a best of 5 is not decided yet")
	assert.Equal(t, 2, out.ScoreA)
	assert.Equal(t, 1, out.ScoreB)

	games = append(games, league.Game{GameNumber: 4, ScoreA: 12, ScoreB: 10})
	out = pipeline.AggregateGames(games, 5)
	assert.True(t, out.Decided)
	assert.True(t, out.SideAWon)
	assert.Equal(t, 3, out.ScoreA)
}

func TestAggregateGamesBestOfOne(t *testing.T) {
	out := pipeline.AggregateGames([]league.Game{{GameNumber: 1, ScoreA: 9, ScoreB: 11}}, 1)
	assert.True(t, out.Decided)
	assert.False(t, out.SideAWon)
}

func TestAggregateGamesIgnoresTies(t *testing.T) {
	games := []league.Game{
		{GameNumber: 1, ScoreA: 10, ScoreB: 10},
		{GameNumber: 2, ScoreA: 11, ScoreB: 4},
	}

	out := pipeline.AggregateGames(games, 1)
	assert.Equal(t, 1, out.ScoreA)
	assert.Equal(t, 0, out.ScoreB)
	assert.True(t, out.Decided)

	// A match consisting only of tied games decides nothing.
	out = pipeline.AggregateGames([]league.Game{{GameNumber: 1, ScoreA: 8, ScoreB: 8}}, 1)
	assert.False(t, out.Decided)
}

func TestAggregateGamesRevertsAfterDeletion(t *testing.T) {
	games := []league.Game{
		{GameNumber: 1, ScoreA: 11, ScoreB: 2},
		{GameNumber: 2, ScoreA: 11, ScoreB: 6},
	}
	assert.True(t, pipeline.AggregateGames(games, 3).Decided)

	// Re-running after a game was removed must be able to undecide the match.
	assert.False(t, pipeline.AggregateGames(games[:1], 3).Decided)

	assert.False(t, pipeline.AggregateGames(nil, 3).Decided)
}
