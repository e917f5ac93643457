package league

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{
		db: db,
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx so match loading helpers
// can run inside or outside a transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// UpsertPlayer inserts a new player or updates an existing one. Rating
// fields are only written on insert; they are owned by the rating engine.
func (s *store) UpsertPlayer(p PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Rating == 0 {
		p.Rating = 1500
	}
	if p.PeakRating == 0 {
		p.PeakRating = p.Rating
	}

	_, err := s.db.Exec(`
		INSERT INTO players (id, name, email, email_verified, rating, peak_rating, rated_match_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			email_verified = excluded.email_verified;
	`, p.ID, p.Name, p.Email, p.EmailVerified, p.Rating, p.PeakRating, p.RatedMatchCount)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

func (s *store) SetEmailVerified(playerID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE players SET email_verified = ? WHERE id = ?", verified, playerID)
	return err
}

func (s *store) GetPlayer(playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayer(s.db, playerID)
}

func (s *store) getPlayer(q querier, playerID string) (*PlayerInfo, error) {
	var p PlayerInfo
	var email sql.NullString
	err := q.QueryRow(`
		SELECT id, name, email, email_verified, rating, peak_rating, rated_match_count
		FROM players WHERE id = ?
	`, playerID).Scan(&p.ID, &p.Name, &email, &p.EmailVerified, &p.Rating, &p.PeakRating, &p.RatedMatchCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s not found", playerID)
	}
	if err != nil {
		return nil, err
	}
	p.Email = email.String
	return &p, nil
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, email, email_verified, rating, peak_rating, rated_match_count
		FROM players ORDER BY name
	`)
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		var email sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &email, &p.EmailVerified, &p.Rating, &p.PeakRating, &p.RatedMatchCount); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Email = email.String
		players = append(players, p)
	}
	return players, nil
}

// CreateSide reuses an existing side with the identical roster, otherwise
// creates a new one.
func (s *store) CreateSide(playerIDs []string) (*Side, error) {
	if len(playerIDs) < 1 || len(playerIDs) > 2 {
		return nil, fmt.Errorf("a side needs 1 or 2 players, got %d", len(playerIDs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.findSideByRoster(playerIDs); err != nil {
		return nil, err
	} else if existing != "" {
		return s.loadSide(s.db, existing)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	sideID := uuid.NewString()
	if _, err := tx.Exec("INSERT INTO sides (id) VALUES (?)", sideID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create side: %w", err)
	}
	for i, playerID := range playerIDs {
		if _, err := tx.Exec(
			"INSERT INTO side_players (side_id, player_id, position) VALUES (?, ?, ?)",
			sideID, playerID, i,
		); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to add player %s to side: %w", playerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.loadSide(s.db, sideID)
}

// findSideByRoster returns the id of a side with exactly these players, or "".
func (s *store) findSideByRoster(playerIDs []string) (string, error) {
	rows, err := s.db.Query("SELECT DISTINCT side_id FROM side_players WHERE player_id = ?", playerIDs[0])
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		candidates = append(candidates, id)
	}

	want := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		want[id] = true
	}

	for _, sideID := range candidates {
		side, err := s.loadSide(s.db, sideID)
		if err != nil {
			return "", err
		}
		if len(side.Players) != len(want) {
			continue
		}
		match := true
		for _, p := range side.Players {
			if !want[p.ID] {
				match = false
				break
			}
		}
		if match {
			return sideID, nil
		}
	}
	return "", nil
}

func (s *store) GetSide(sideID string) (*Side, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadSide(s.db, sideID)
}

func (s *store) loadSide(q querier, sideID string) (*Side, error) {
	rows, err := q.Query(`
		SELECT p.id, p.name, p.email, p.email_verified, p.rating, p.peak_rating, p.rated_match_count
		FROM side_players sp
		JOIN players p ON p.id = sp.player_id
		WHERE sp.side_id = ?
		ORDER BY sp.position
	`, sideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	side := &Side{ID: sideID}
	for rows.Next() {
		var p PlayerInfo
		var email sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &email, &p.EmailVerified, &p.Rating, &p.PeakRating, &p.RatedMatchCount); err != nil {
			return nil, err
		}
		p.Email = email.String
		side.Players = append(side.Players, p)
	}
	if len(side.Players) == 0 {
		return nil, fmt.Errorf("side %s not found", sideID)
	}
	return side, nil
}

func (s *store) CreateMatch(sideAID, sideBID string, bestOf int, kind MatchKind, datePlayed int64) (*Match, error) {
	if bestOf < 1 || bestOf%2 == 0 {
		return nil, fmt.Errorf("best_of must be an odd integer >= 1, got %d", bestOf)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matchID := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO matches (id, side_a, side_b, best_of, match_kind, date_played)
		VALUES (?, ?, ?, ?, ?, ?)
	`, matchID, sideAID, sideBID, bestOf, string(kind), datePlayed)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return s.loadMatch(s.db, matchID)
}

func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadMatch(s.db, matchID)
}

func (s *store) loadMatch(q querier, matchID string) (*Match, error) {
	var m Match
	var winner sql.NullString
	var kind string
	err := q.QueryRow(`
		SELECT id, side_a, side_b, best_of, match_kind, winner_side_id,
		       is_fully_confirmed, score_a, score_b, date_played, created_at
		FROM matches WHERE id = ?
	`, matchID).Scan(
		&m.ID, &m.SideA.ID, &m.SideB.ID, &m.BestOf, &kind, &winner,
		&m.IsFullyConfirmed, &m.ScoreA, &m.ScoreB, &m.DatePlayed, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match %s not found", matchID)
	}
	if err != nil {
		return nil, err
	}
	m.Kind = MatchKind(kind)
	if winner.Valid {
		m.WinnerSideID = &winner.String
	}

	sideA, err := s.loadSide(q, m.SideA.ID)
	if err != nil {
		return nil, err
	}
	sideB, err := s.loadSide(q, m.SideB.ID)
	if err != nil {
		return nil, err
	}
	m.SideA = *sideA
	m.SideB = *sideB
	return &m, nil
}

// MatchesVisibleTo filters matches by actor: staff see everything, players
// see their own matches, anonymous callers see nothing.
func (s *store) MatchesVisibleTo(actor Actor) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !actor.Authenticated {
		return nil, nil
	}

	var rows *sql.Rows
	var err error
	if actor.Staff {
		rows, err = s.db.Query("SELECT id FROM matches ORDER BY date_played DESC, created_at DESC")
	} else {
		if actor.PlayerID == "" {
			return nil, nil
		}
		rows, err = s.db.Query(`
			SELECT m.id FROM matches m
			WHERE EXISTS (
				SELECT 1 FROM side_players sp
				WHERE sp.side_id IN (m.side_a, m.side_b) AND sp.player_id = ?
			)
			ORDER BY m.date_played DESC, m.created_at DESC
		`, actor.PlayerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectMatches(rows)
}

func (s *store) RecentMatches(limit int) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id FROM matches ORDER BY date_played DESC, created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectMatches(rows)
}

func (s *store) collectMatches(rows *sql.Rows) ([]*Match, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	var matches []*Match
	for _, id := range ids {
		m, err := s.loadMatch(s.db, id)
		if err != nil {
			log.Error("Failed to load match", "error", err, "matchID", id)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// UpsertGame inserts or updates a game by (match, game number).
func (s *store) UpsertGame(matchID string, g Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO games (match_id, game_number, score_a, score_b)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(match_id, game_number) DO UPDATE SET
			score_a = excluded.score_a,
			score_b = excluded.score_b;
	`, matchID, g.GameNumber, g.ScoreA, g.ScoreB)
	if err != nil {
		return fmt.Errorf("failed to upsert game %d for match %s: %w", g.GameNumber, matchID, err)
	}
	return nil
}

func (s *store) DeleteGame(matchID string, gameNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM games WHERE match_id = ? AND game_number = ?", matchID, gameNumber)
	return err
}

func (s *store) GetGames(matchID string) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadGames(s.db, matchID)
}

func (s *store) loadGames(q querier, matchID string) ([]Game, error) {
	rows, err := q.Query(`
		SELECT game_number, score_a, score_b FROM games
		WHERE match_id = ? ORDER BY game_number
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.GameNumber, &g.ScoreA, &g.ScoreB); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *store) SetMatchOutcome(matchID string, winnerSideID *string, scoreA, scoreB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE matches
		SET winner_side_id = ?, score_a = ?, score_b = ?, updated_at = unixepoch()
		WHERE id = ?
	`, winnerSideID, scoreA, scoreB, matchID)
	return err
}

func (s *store) SetFullyConfirmed(matchID string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE matches SET is_fully_confirmed = ?, updated_at = unixepoch() WHERE id = ?",
		confirmed, matchID)
	return err
}

// InsertConfirmations records confirmations for the given players in one
// bulk, duplicate-tolerant operation.
func (s *store) InsertConfirmations(matchID string, playerIDs []string) error {
	if len(playerIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, playerID := range playerIDs {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO confirmations (match_id, player_id) VALUES (?, ?)",
			matchID, playerID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert confirmation for %s: %w", playerID, err)
		}
	}
	return tx.Commit()
}

func (s *store) GetConfirmations(matchID string) ([]Confirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadConfirmations(s.db, matchID)
}

func (s *store) loadConfirmations(q querier, matchID string) ([]Confirmation, error) {
	rows, err := q.Query(
		"SELECT match_id, player_id, confirmed_at FROM confirmations WHERE match_id = ?", matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var confirmations []Confirmation
	for rows.Next() {
		var c Confirmation
		if err := rows.Scan(&c.MatchID, &c.PlayerID, &c.ConfirmedAt); err != nil {
			return nil, err
		}
		confirmations = append(confirmations, c)
	}
	return confirmations, nil
}
