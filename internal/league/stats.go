package league

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// Leaderboard returns every player with their confirmed-match record,
// sorted by current rating.
func (s *store) Leaderboard() ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.rating, p.peak_rating, p.rated_match_count,
		       COALESCE(cnt.played, 0), COALESCE(cnt.won, 0)
		FROM players p
		LEFT JOIN (
			SELECT sp.player_id AS pid,
			       COUNT(*) AS played,
			       SUM(CASE WHEN sp.side_id = m.winner_side_id THEN 1 ELSE 0 END) AS won
			FROM matches m
			JOIN side_players sp ON sp.side_id IN (m.side_a, m.side_b)
			WHERE m.winner_side_id IS NOT NULL AND m.is_fully_confirmed = 1
			GROUP BY sp.player_id
		) cnt ON cnt.pid = p.id
		ORDER BY p.rating DESC, p.name
	`)
	if err != nil {
		log.Error("Failed to query leaderboard", "error", err)
		return nil, err
	}
	defer rows.Close()

	var stats []PlayerStats
	for rows.Next() {
		var st PlayerStats
		if err := rows.Scan(&st.PlayerID, &st.PlayerName, &st.Rating, &st.PeakRating,
			&st.RatedMatchCount, &st.MatchesPlayed, &st.MatchesWon); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		st.MatchesLost = st.MatchesPlayed - st.MatchesWon
		if st.MatchesPlayed > 0 {
			st.WinPercentage = (float64(st.MatchesWon) / float64(st.MatchesPlayed)) * 100
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// PlayerStats returns one player's summary. Win rate is 0 when no matches
// have been played.
func (s *store) PlayerStats(playerID string) (*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st PlayerStats
	err := s.db.QueryRow(
		"SELECT id, name, rating, peak_rating, rated_match_count FROM players WHERE id = ?",
		playerID,
	).Scan(&st.PlayerID, &st.PlayerName, &st.Rating, &st.PeakRating, &st.RatedMatchCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s not found", playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN EXISTS (
		           SELECT 1 FROM side_players sp
		           WHERE sp.side_id = m.winner_side_id AND sp.player_id = ?
		       ) THEN 1 ELSE 0 END), 0)
		FROM matches m
		WHERE m.winner_side_id IS NOT NULL AND m.is_fully_confirmed = 1
		  AND EXISTS (
		      SELECT 1 FROM side_players sp2
		      WHERE sp2.side_id IN (m.side_a, m.side_b) AND sp2.player_id = ?
		  )
	`, playerID, playerID).Scan(&st.MatchesPlayed, &st.MatchesWon)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	st.MatchesLost = st.MatchesPlayed - st.MatchesWon
	if st.MatchesPlayed > 0 {
		st.WinPercentage = (float64(st.MatchesWon) / float64(st.MatchesPlayed)) * 100
	}
	return &st, nil
}

// PendingCount counts decided matches still waiting on this player's
// confirmation.
func (s *store) PendingCount(playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM matches m
		WHERE m.winner_side_id IS NOT NULL AND m.is_fully_confirmed = 0
		  AND EXISTS (
		      SELECT 1 FROM side_players sp
		      WHERE sp.side_id IN (m.side_a, m.side_b) AND sp.player_id = ?
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM confirmations c
		      WHERE c.match_id = m.id AND c.player_id = ?
		  )
	`, playerID, playerID).Scan(&count)
	return count, err
}

// HeadToHead summarizes confirmed singles results between two players.
func (s *store) HeadToHead(playerA, playerB string) (*HeadToHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT m.id FROM matches m
		WHERE m.winner_side_id IS NOT NULL AND m.is_fully_confirmed = 1
		  AND EXISTS (SELECT 1 FROM side_players sp WHERE sp.side_id IN (m.side_a, m.side_b) AND sp.player_id = ?)
		  AND EXISTS (SELECT 1 FROM side_players sp WHERE sp.side_id IN (m.side_a, m.side_b) AND sp.player_id = ?)
	`, playerA, playerB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	h2h := &HeadToHead{PlayerA: playerA, PlayerB: playerB}
	for _, id := range ids {
		m, err := s.loadMatch(s.db, id)
		if err != nil {
			log.Error("Failed to load match for head-to-head", "error", err, "matchID", id)
			continue
		}
		// Head-to-head is a singles concept; skip doubles and matches
		// where the two players were teammates.
		if !m.IsSingles() {
			continue
		}
		aOnA := m.SideA.Contains(playerA)
		bOnB := m.SideB.Contains(playerB)
		aOnB := m.SideB.Contains(playerA)
		bOnA := m.SideA.Contains(playerB)
		if !(aOnA && bOnB) && !(aOnB && bOnA) {
			continue
		}
		h2h.Total++
		winnerIsSideA := *m.WinnerSideID == m.SideA.ID
		if (aOnA && winnerIsSideA) || (aOnB && !winnerIsSideA) {
			h2h.WinsA++
		} else {
			h2h.WinsB++
		}
	}
	return h2h, nil
}

func (s *store) TotalMatches() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&count)
	return count, err
}

func (s *store) TotalPlayers() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM players").Scan(&count)
	return count, err
}
