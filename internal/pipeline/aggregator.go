package pipeline

import "github.com/mvoss/ttstats/internal/league"

// Outcome is the result of aggregating a match's games.
type Outcome struct {
	ScoreA   int
	ScoreB   int
	Decided  bool
	SideAWon bool
}

// AggregateGames counts game wins per side and decides the match winner.
// A side wins the match when it reaches floor(bestOf/2)+1 game wins. Tied
// games count for neither side; upstream validation rejects them, but a tie
// that slips through must not decide anything. Pure function, safe to re-run
// on every game write.
func AggregateGames(games []league.Game, bestOf int) Outcome {
	var out Outcome
	for _, g := range games {
		switch {
		case g.ScoreA > g.ScoreB:
			out.ScoreA++
		case g.ScoreB > g.ScoreA:
			out.ScoreB++
		}
	}

	gamesToWin := bestOf/2 + 1
	switch {
	case out.ScoreA >= gamesToWin:
		out.Decided = true
		out.SideAWon = true
	case out.ScoreB >= gamesToWin:
		out.Decided = true
	}
	return out
}
