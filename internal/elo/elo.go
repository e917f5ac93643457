// Package elo implements the rating engine: traditional Elo with table
// tennis specific K-factor adjustments and team averaging for doubles.
package elo

import "math"

const (
	// InitialRating is the rating every player starts from and is reset
	// to by a replay.
	InitialRating = 1500

	baseK = 32.0

	// Players with fewer rated matches than this get a higher K so their
	// rating converges faster.
	newPlayerThreshold = 20

	// KindTournament is the only match kind that changes the K-factor;
	// casual and practice are equal.
	KindTournament = "tournament"
)

// Player carries the rating inputs for one participant.
type Player struct {
	Rating          int
	RatedMatchCount int
}

// MatchParams are the per-match inputs to the K-factor.
type MatchParams struct {
	Kind   string
	BestOf int
}

// Update holds the computed per-side deltas and K-factors. Every member of
// a side receives the side's delta. Deltas are not required to be exact
// negatives of each other: each side moves at its own K-factor.
type Update struct {
	DeltaA int
	DeltaB int
	KA     float64
	KB     float64
}

// ExpectedScore returns the probability of A winning given both ratings.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// KFactor computes the rating-change sensitivity for one player.
// Tournament matches and longer series move ratings more; so do a
// player's first matches.
func KFactor(m MatchParams, ratedMatchCount int) float64 {
	typeMultiplier := 1.0
	if m.Kind == KindTournament {
		typeMultiplier = 1.5
	}

	bestOfMultiplier := 1.0
	switch m.BestOf {
	case 3:
		bestOfMultiplier = 0.9
	case 5:
		bestOfMultiplier = 1.0
	case 7:
		bestOfMultiplier = 1.1
	}

	experienceMultiplier := 1.0
	if ratedMatchCount < newPlayerThreshold {
		experienceMultiplier = 1.5
	}

	return baseK * typeMultiplier * bestOfMultiplier * experienceMultiplier
}

// SideRating is the effective rating of a side: the arithmetic mean of its
// members' current ratings.
func SideRating(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range players {
		sum += float64(p.Rating)
	}
	return sum / float64(len(players))
}

// SideK is the mean of the members' individual K-factors, so a doubles team
// with one new and one veteran player gets a blended adjustment.
func SideK(m MatchParams, players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range players {
		sum += KFactor(m, p.RatedMatchCount)
	}
	return sum / float64(len(players))
}

// ComputeUpdate calculates both sides' rating deltas for a decided match.
// Deterministic given the same inputs.
func ComputeUpdate(m MatchParams, sideA, sideB []Player, sideAWon bool) Update {
	ratingA := SideRating(sideA)
	ratingB := SideRating(sideB)

	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := 1 - expectedA

	actualA, actualB := 1.0, 0.0
	if !sideAWon {
		actualA, actualB = 0.0, 1.0
	}

	kA := SideK(m, sideA)
	kB := SideK(m, sideB)

	return Update{
		DeltaA: int(math.Round(kA * (actualA - expectedA))),
		DeltaB: int(math.Round(kB * (actualB - expectedB))),
		KA:     kA,
		KB:     kB,
	}
}
