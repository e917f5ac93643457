package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvoss/ttstats/internal/cache"
	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/metrics"
	"github.com/mvoss/ttstats/internal/notifier"
)

var _ MatchPipeline = (*Processor)(nil)

// Processor is the synchronous pipeline run inside the request that mutated
// match data. Order matters: aggregate games, evaluate confirmations, apply
// the rating, then invalidate caches.
type Processor struct {
	store       league.LeagueStore
	notifier    notifier.Notifier
	invalidator *cache.Invalidator
	metrics     metrics.Metrics
}

// NewProcessor creates a new Processor.
func NewProcessor(store league.LeagueStore, notifier notifier.Notifier, invalidator *cache.Invalidator, metrics metrics.Metrics) *Processor {
	return &Processor{
		store:       store,
		notifier:    notifier,
		invalidator: invalidator,
		metrics:     metrics,
	}
}

// ProcessGameSaved recomputes the match winner from its games and runs the
// rest of the pipeline. The winner transition is decided here, explicitly,
// by comparing the aggregate against the stored winner before persisting.
func (p *Processor) ProcessGameSaved(matchID string, dryRun bool) error {
	defer p.observeDuration(time.Now())

	match, err := p.store.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	games, err := p.store.GetGames(matchID)
	if err != nil {
		return fmt.Errorf("failed to load games for match %s: %w", matchID, err)
	}

	outcome := AggregateGames(games, match.BestOf)

	var winnerSideID *string
	if outcome.Decided {
		id := match.SideB.ID
		if outcome.SideAWon {
			id = match.SideA.ID
		}
		winnerSideID = &id
	}

	winnerJustSet := winnerSideID != nil && match.WinnerSideID == nil
	winnerChanged := winnerJustSet ||
		(winnerSideID == nil && match.WinnerSideID != nil) ||
		(winnerSideID != nil && match.WinnerSideID != nil && *winnerSideID != *match.WinnerSideID)

	if winnerChanged || outcome.ScoreA != match.ScoreA || outcome.ScoreB != match.ScoreB {
		if err := p.store.SetMatchOutcome(matchID, winnerSideID, outcome.ScoreA, outcome.ScoreB); err != nil {
			return fmt.Errorf("failed to persist match outcome: %w", err)
		}
		match.WinnerSideID = winnerSideID
		match.ScoreA = outcome.ScoreA
		match.ScoreB = outcome.ScoreB
	}

	if winnerJustSet {
		p.metrics.IncMatchesCompleted()
		log.Info("Match completed", "matchID", matchID, "score", fmt.Sprintf("%d-%d", outcome.ScoreA, outcome.ScoreB))
	}

	return p.settle(match, winnerJustSet, dryRun)
}

// ProcessConfirmation records one player's confirmation and runs the rest of
// the pipeline. Confirming twice is a no-op.
func (p *Processor) ProcessConfirmation(matchID, playerID string, dryRun bool) error {
	defer p.observeDuration(time.Now())

	match, err := p.store.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	if !match.SideA.Contains(playerID) && !match.SideB.Contains(playerID) {
		return fmt.Errorf("player %s is not a participant of match %s", playerID, matchID)
	}

	if err := p.store.InsertConfirmations(matchID, []string{playerID}); err != nil {
		return fmt.Errorf("failed to record confirmation: %w", err)
	}
	p.metrics.IncConfirmationsRecorded()
	log.Info("Confirmation recorded", "matchID", matchID, "playerID", playerID)

	return p.settle(match, false, dryRun)
}

// settle runs the tail of the pipeline shared by both triggers: evaluate
// confirmation state, auto-confirm or notify, persist isFullyConfirmed,
// apply the rating when eligible, and invalidate caches.
func (p *Processor) settle(match *league.Match, winnerJustSet, dryRun bool) error {
	confirmations, err := p.store.GetConfirmations(match.ID)
	if err != nil {
		return fmt.Errorf("failed to load confirmations: %w", err)
	}

	state := EvaluateConfirmation(match, confirmations)

	if state.ShouldAutoConfirm {
		participants := match.Players()
		ids := make([]string, len(participants))
		for i, pl := range participants {
			ids[i] = pl.ID
		}
		if err := p.store.InsertConfirmations(match.ID, ids); err != nil {
			return fmt.Errorf("failed to auto-confirm match %s: %w", match.ID, err)
		}
		p.metrics.IncAutoConfirms()
		log.Info("Match auto-confirmed", "matchID", match.ID)
		state.SideAConfirmed = true
		state.SideBConfirmed = true
	} else if winnerJustSet {
		// Every verified participant who has not yet confirmed is asked
		// exactly once, at the moment the match completes.
		confirmed := make(map[string]bool, len(confirmations))
		for _, c := range confirmations {
			confirmed[c.PlayerID] = true
		}
		for _, pl := range match.Players() {
			if !pl.EmailVerified || confirmed[pl.ID] {
				continue
			}
			if err := p.notifier.SendConfirmationNeeded(match, pl, dryRun); err != nil {
				log.Error("Failed to notify player for confirmation", "matchID", match.ID, "playerID", pl.ID, "error", err)
			}
		}
	}

	fullyConfirmed := match.WinnerSideID != nil && state.FullyConfirmed()
	if fullyConfirmed != match.IsFullyConfirmed {
		if err := p.store.SetFullyConfirmed(match.ID, fullyConfirmed); err != nil {
			return fmt.Errorf("failed to persist confirmation state: %w", err)
		}
		match.IsFullyConfirmed = fullyConfirmed
	}

	if fullyConfirmed {
		result, err := p.store.ApplyRating(match.ID)
		if err != nil {
			return fmt.Errorf("failed to apply rating for match %s: %w", match.ID, err)
		}
		if result.Applied {
			p.metrics.IncRatingsApplied()
			log.Info("Rating applied", "matchID", match.ID)
		} else {
			p.metrics.IncRatingSkipped(string(result.Reason))
			log.Debug("Rating skipped", "matchID", match.ID, "reason", result.Reason)
		}
	}

	if winnerJustSet {
		if err := p.notifier.SendResultNotification(match, dryRun); err != nil {
			log.Error("Failed to send result notification", "matchID", match.ID, "error", err)
		}
	}

	p.invalidator.InvalidateMatch(match)
	p.metrics.IncCacheInvalidations()
	return nil
}

// Recalculate rebuilds every rating from scratch. After a real run the
// per-player caches are all stale, so they are dropped wholesale.
func (p *Processor) Recalculate(dryRun bool) (league.ReplaySummary, error) {
	summary, err := p.store.ReplayRatings(dryRun)
	if err != nil {
		return summary, fmt.Errorf("failed to replay ratings: %w", err)
	}
	p.metrics.IncReplayRuns()

	if !dryRun {
		players, err := p.store.GetAllPlayers()
		if err != nil {
			return summary, fmt.Errorf("failed to list players for cache invalidation: %w", err)
		}
		for _, pl := range players {
			p.invalidator.InvalidatePlayer(pl.ID)
		}
		p.metrics.IncCacheInvalidations()
	}

	log.Info("Rating replay finished",
		"dryRun", summary.DryRun,
		"matchesProcessed", summary.MatchesProcessed,
		"historyDeleted", summary.HistoryDeleted,
		"playersReset", summary.PlayersReset)
	return summary, nil
}

func (p *Processor) observeDuration(start time.Time) {
	p.metrics.ObservePipelineDuration(time.Since(start).Seconds())
}
