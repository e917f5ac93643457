package pipeline

import "github.com/mvoss/ttstats/internal/league"

// MatchPipeline drives the winner -> confirmation -> rating chain for a
// single match, and the offline rating replay.
type MatchPipeline interface {
	// ProcessGameSaved re-aggregates a match's games after a game was
	// inserted, updated, or deleted, and runs the downstream pipeline.
	ProcessGameSaved(matchID string, dryRun bool) error
	// ProcessConfirmation records one player's confirmation and runs the
	// downstream pipeline.
	ProcessConfirmation(matchID, playerID string, dryRun bool) error
	// Recalculate rebuilds every rating from the ordered match log.
	Recalculate(dryRun bool) (league.ReplaySummary, error)
}
