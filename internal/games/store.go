package games

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrNotFound is returned when no result exists for an event id.
var ErrNotFound = errors.New("game result not found")

// New creates a new game-result Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// UpsertResult inserts a new game result or refreshes an existing one. It is
// "dumb" and never touches the processing status of an existing row, so a
// redelivered feed message cannot rewind the pipeline.
func (s *store) UpsertResult(res *GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.db.Prepare(`
		INSERT INTO game_results (event_id, game_id, user_id, season_id, user_name, user_photo, nickname, xp_earned, won, drew, goals_scored, goals_conceded, assists, saves, was_mvp, played_at, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			user_name = excluded.user_name,
			user_photo = excluded.user_photo,
			nickname = excluded.nickname,
			xp_earned = excluded.xp_earned,
			won = excluded.won,
			drew = excluded.drew,
			goals_scored = excluded.goals_scored,
			goals_conceded = excluded.goals_conceded,
			assists = excluded.assists,
			saves = excluded.saves,
			was_mvp = excluded.was_mvp,
			played_at = excluded.played_at;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare game result upsert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		res.EventID(), res.GameID, res.UserID, res.SeasonID, res.UserName, res.UserPhoto, res.Nickname,
		res.XPEarned, res.Won, res.Drew, res.GoalsScored, res.GoalsConceded, res.Assists, res.Saves,
		res.WasMVP, res.PlayedAt, StatusNew,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game result: %w", err)
	}
	return nil
}

// UpdateProcessingStatus transitions a game result to a new pipeline state.
func (s *store) UpdateProcessingStatus(eventID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE game_results SET processing_status = ? WHERE event_id = ?", status, eventID)
	return err
}

// GetResultsForProcessing retrieves all results that have not yet completed
// the pipeline, oldest first.
func (s *store) GetResultsForProcessing() ([]*GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT game_id, user_id, season_id, user_name, user_photo, nickname, xp_earned, won, drew, goals_scored, goals_conceded, assists, saves, was_mvp, played_at, processing_status
		FROM game_results
		WHERE processing_status != ?
		ORDER BY played_at ASC
	`, StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*GameResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			log.Error("Failed to scan game result row", "error", err)
			continue
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetResult retrieves a single result by event id.
func (s *store) GetResult(eventID string) (*GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT game_id, user_id, season_id, user_name, user_photo, nickname, xp_earned, won, drew, goals_scored, goals_conceded, assists, saves, was_mvp, played_at, processing_status
		FROM game_results
		WHERE event_id = ?
	`, eventID)

	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func scanResult(scanner interface{ Scan(...any) error }) (*GameResult, error) {
	var res GameResult
	err := scanner.Scan(
		&res.GameID, &res.UserID, &res.SeasonID, &res.UserName, &res.UserPhoto, &res.Nickname,
		&res.XPEarned, &res.Won, &res.Drew, &res.GoalsScored, &res.GoalsConceded, &res.Assists,
		&res.Saves, &res.WasMVP, &res.PlayedAt, &res.ProcessingStatus,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Clear wipes the intake queue. Test support.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM game_results"); err != nil {
		log.Error("Failed to clear game_results table", "error", err)
	}
}
