package season

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/league"
	"github.com/charmbracelet/log"
)

// New creates a new season Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// Get retrieves the participation for (user, season).
func (s *store) Get(userID, seasonID string) (*Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT user_id, season_id, division, points, games_played, wins, draws, losses, goals_scored, goals_conceded, assists, mvp_count, league_rating, promotion_progress, relegation_progress, protection_games, recent_games_json, last_calculated_at, version
		FROM season_participations
		WHERE user_id = ? AND season_id = ?
	`, userID, seasonID)

	p, err := scanParticipation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query season participation: %w", err)
	}
	return p, nil
}

// Save persists the participation together with the applied-game marker in
// one transaction. The marker makes the game application at-most-once: a
// second save for the same (game, user) returns ErrAlreadyProcessed. The
// version check makes the write optimistic: a lost race returns
// ErrConcurrentModification and the caller re-reads and retries.
func (s *store) Save(p *Participation, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin season save: %w", err)
	}

	var applied bool
	err = tx.QueryRow("SELECT EXISTS(SELECT 1 FROM applied_games WHERE game_id = ? AND user_id = ?)", gameID, p.UserID).Scan(&applied)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to check applied-game marker: %w", err)
	}
	if applied {
		tx.Rollback()
		return ErrAlreadyProcessed
	}

	if _, err = tx.Exec("INSERT INTO applied_games (game_id, user_id, applied_at) VALUES (?, ?, ?)", gameID, p.UserID, p.LastCalculatedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record applied-game marker: %w", err)
	}

	windowJSON, err := json.Marshal(p.RecentGames)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to marshal recent games: %w", err)
	}

	if p.Version == 0 {
		// First persistence of this participation. The primary key rejects
		// a concurrent creator.
		_, err = tx.Exec(`
			INSERT INTO season_participations (user_id, season_id, division, points, games_played, wins, draws, losses, goals_scored, goals_conceded, goal_difference, assists, mvp_count, league_rating, promotion_progress, relegation_progress, protection_games, recent_games_json, last_calculated_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		`, p.UserID, p.SeasonID, p.Division.String(), p.Points, p.GamesPlayed, p.Wins, p.Draws, p.Losses,
			p.GoalsScored, p.GoalsConceded, p.GoalDifference(), p.Assists, p.MVPCount, p.LeagueRating,
			p.PromotionProgress, p.RelegationProgress, p.ProtectionGames, string(windowJSON), p.LastCalculatedAt)
		if err != nil {
			tx.Rollback()
			// Both sqlite drivers report the primary-key race as a UNIQUE
			// constraint failure; anything else is a real storage error.
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return ErrConcurrentModification
			}
			return fmt.Errorf("failed to insert season participation: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit season save: %w", err)
		}
		p.Version = 1
		return nil
	}

	res, err := tx.Exec(`
		UPDATE season_participations SET
			division = ?, points = ?, games_played = ?, wins = ?, draws = ?, losses = ?,
			goals_scored = ?, goals_conceded = ?, goal_difference = ?, assists = ?, mvp_count = ?,
			league_rating = ?, promotion_progress = ?, relegation_progress = ?, protection_games = ?,
			recent_games_json = ?, last_calculated_at = ?, version = version + 1
		WHERE user_id = ? AND season_id = ? AND version = ?
	`, p.Division.String(), p.Points, p.GamesPlayed, p.Wins, p.Draws, p.Losses,
		p.GoalsScored, p.GoalsConceded, p.GoalDifference(), p.Assists, p.MVPCount,
		p.LeagueRating, p.PromotionProgress, p.RelegationProgress, p.ProtectionGames,
		string(windowJSON), p.LastCalculatedAt,
		p.UserID, p.SeasonID, p.Version)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update season participation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return ErrConcurrentModification
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit season save: %w", err)
	}
	p.Version++
	return nil
}

// IsGameApplied reports whether a game result was already folded into the
// user's participation.
func (s *store) IsGameApplied(gameID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var applied bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM applied_games WHERE game_id = ? AND user_id = ?)", gameID, userID).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("failed to check applied-game marker: %w", err)
	}
	return applied, nil
}

// GetSeasonParticipants retrieves every participation in a season, best
// rating first.
func (s *store) GetSeasonParticipants(seasonID string) ([]*Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT user_id, season_id, division, points, games_played, wins, draws, losses, goals_scored, goals_conceded, assists, mvp_count, league_rating, promotion_progress, relegation_progress, protection_games, recent_games_json, last_calculated_at, version
		FROM season_participations
		WHERE season_id = ?
		ORDER BY league_rating DESC, user_id ASC
	`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			log.Error("Failed to scan season participation row", "error", err)
			continue
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func scanParticipation(scanner interface{ Scan(...any) error }) (*Participation, error) {
	var p Participation
	var division string
	var windowJSON sql.NullString

	err := scanner.Scan(
		&p.UserID, &p.SeasonID, &division, &p.Points, &p.GamesPlayed, &p.Wins, &p.Draws, &p.Losses,
		&p.GoalsScored, &p.GoalsConceded, &p.Assists, &p.MVPCount, &p.LeagueRating,
		&p.PromotionProgress, &p.RelegationProgress, &p.ProtectionGames, &windowJSON,
		&p.LastCalculatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}

	p.Division = league.DivisionFromString(division)
	if windowJSON.Valid && windowJSON.String != "" {
		if err := json.Unmarshal([]byte(windowJSON.String), &p.RecentGames); err != nil {
			log.Error("Failed to unmarshal recent_games_json", "error", err, "userID", p.UserID, "seasonID", p.SeasonID)
		}
	}
	if p.RecentGames == nil {
		p.RecentGames = []league.RecentGame{}
	}
	return &p, nil
}

// Clear wipes participations and applied-game markers. Test support.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing season store", "error", err)
		return
	}
	if _, err := tx.Exec("DELETE FROM season_participations"); err != nil {
		log.Error("Failed to clear season_participations table", "error", err)
		tx.Rollback()
		return
	}
	if _, err := tx.Exec("DELETE FROM applied_games"); err != nil {
		log.Error("Failed to clear applied_games table", "error", err)
		tx.Rollback()
		return
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing season store", "error", err)
	}
}
