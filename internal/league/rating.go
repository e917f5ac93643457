package league

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mvoss/ttstats/internal/elo"
)

func (s *store) HasRatingHistory(matchID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasRatingHistory(s.db, matchID)
}

func (s *store) hasRatingHistory(q querier, matchID string) (bool, error) {
	var exists bool
	err := q.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM rating_history WHERE match_id = ?)", matchID).Scan(&exists)
	return exists, err
}

func (s *store) RatingHistoryFor(playerID string) ([]RatingHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT match_id, player_id, old_rating, new_rating, rating_change, k_factor, created_at
		FROM rating_history WHERE player_id = ? ORDER BY created_at, id
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []RatingHistory
	for rows.Next() {
		var h RatingHistory
		if err := rows.Scan(&h.MatchID, &h.PlayerID, &h.OldRating, &h.NewRating, &h.RatingChange, &h.KFactor, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, nil
}

// ApplyRating rates the match if it is eligible. All checks and writes run
// inside one transaction so that two near-simultaneous confirmations cannot
// double-apply; the unique (match, player) constraint on rating_history is
// the backstop.
func (s *store) ApplyRating(matchID string) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return ApplyResult{}, err
	}

	result, err := s.applyRatingTx(tx, matchID)
	if err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			// A concurrent invocation won the race. Treat as a no-op.
			return ApplyResult{Applied: false, Reason: SkipAlreadyRated}, nil
		}
		return ApplyResult{}, err
	}
	if !result.Applied {
		tx.Rollback()
		return result, nil
	}
	if err := tx.Commit(); err != nil {
		return ApplyResult{}, err
	}
	return result, nil
}

func (s *store) applyRatingTx(tx *sql.Tx, matchID string) (ApplyResult, error) {
	m, err := s.loadMatch(tx, matchID)
	if err != nil {
		return ApplyResult{}, err
	}

	if m.WinnerSideID == nil {
		return ApplyResult{Applied: false, Reason: SkipNoWinner}, nil
	}
	if !m.IsFullyConfirmed {
		return ApplyResult{Applied: false, Reason: SkipNotConfirmed}, nil
	}
	rated, err := s.hasRatingHistory(tx, matchID)
	if err != nil {
		return ApplyResult{}, err
	}
	if rated {
		return ApplyResult{Applied: false, Reason: SkipAlreadyRated}, nil
	}

	params := elo.MatchParams{Kind: string(m.Kind), BestOf: m.BestOf}
	update := elo.ComputeUpdate(params, toEloPlayers(m.SideA.Players), toEloPlayers(m.SideB.Players), *m.WinnerSideID == m.SideA.ID)

	if err := s.applySideTx(tx, matchID, m.SideA.Players, update.DeltaA, update.KA); err != nil {
		return ApplyResult{}, err
	}
	if err := s.applySideTx(tx, matchID, m.SideB.Players, update.DeltaB, update.KB); err != nil {
		return ApplyResult{}, err
	}

	log.Info("Applied rating update",
		"matchID", matchID, "deltaA", update.DeltaA, "deltaB", update.DeltaB,
		"kA", update.KA, "kB", update.KB)
	return ApplyResult{Applied: true}, nil
}

// applySideTx gives every member of a side the side's delta and writes the
// audit row per player.
func (s *store) applySideTx(tx *sql.Tx, matchID string, players []PlayerInfo, delta int, kFactor float64) error {
	for _, p := range players {
		newRating := p.Rating + delta
		if _, err := tx.Exec(`
			UPDATE players
			SET rating = ?, peak_rating = MAX(peak_rating, ?), rated_match_count = rated_match_count + 1
			WHERE id = ?
		`, newRating, newRating, p.ID); err != nil {
			return fmt.Errorf("failed to update rating for player %s: %w", p.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO rating_history (match_id, player_id, old_rating, new_rating, rating_change, k_factor)
			VALUES (?, ?, ?, ?, ?, ?)
		`, matchID, p.ID, p.Rating, newRating, delta, kFactor); err != nil {
			return fmt.Errorf("failed to insert rating history for player %s: %w", p.ID, err)
		}
	}
	return nil
}

func toEloPlayers(players []PlayerInfo) []elo.Player {
	out := make([]elo.Player, len(players))
	for i, p := range players {
		out[i] = elo.Player{Rating: p.Rating, RatedMatchCount: p.RatedMatchCount}
	}
	return out
}

// ReplayRatings resets every player to the initial rating, deletes all
// rating history and replays every confirmed match in chronological order,
// all inside one transaction. Elo is path dependent, so the ordering by
// (date_played, created_at) is load-bearing.
func (s *store) ReplayRatings(dryRun bool) (ReplaySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := ReplaySummary{DryRun: dryRun}

	rows, err := s.db.Query(`
		SELECT id FROM matches
		WHERE winner_side_id IS NOT NULL AND is_fully_confirmed = 1
		ORDER BY date_played, created_at
	`)
	if err != nil {
		return summary, err
	}
	var matchIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return summary, err
		}
		matchIDs = append(matchIDs, id)
	}
	rows.Close()

	if err := s.db.QueryRow("SELECT COUNT(*) FROM rating_history").Scan(&summary.HistoryDeleted); err != nil {
		return summary, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM players").Scan(&summary.PlayersReset); err != nil {
		return summary, err
	}
	summary.MatchesProcessed = len(matchIDs)

	if dryRun {
		log.Info("[Dry Run] Replay would run",
			"matches", summary.MatchesProcessed,
			"history_rows", summary.HistoryDeleted,
			"players", summary.PlayersReset)
		return summary, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return summary, err
	}

	if _, err := tx.Exec(`
		UPDATE players SET rating = ?, peak_rating = ?, rated_match_count = 0
	`, elo.InitialRating, elo.InitialRating); err != nil {
		tx.Rollback()
		return summary, fmt.Errorf("failed to reset player ratings: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM rating_history"); err != nil {
		tx.Rollback()
		return summary, fmt.Errorf("failed to clear rating history: %w", err)
	}

	for _, matchID := range matchIDs {
		result, err := s.applyRatingTx(tx, matchID)
		if err != nil {
			tx.Rollback()
			return summary, fmt.Errorf("replay failed at match %s: %w", matchID, err)
		}
		if !result.Applied {
			// Should not happen: history was just cleared and every match
			// in the list has a winner and is confirmed.
			log.Warn("Replay skipped a match unexpectedly", "matchID", matchID, "reason", result.Reason)
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, err
	}

	log.Info("Replay complete",
		"matches", summary.MatchesProcessed,
		"history_deleted", summary.HistoryDeleted,
		"players_reset", summary.PlayersReset)
	return summary, nil
}
