package milestone

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new milestone Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// RecordUnlock inserts the unlock marker if absent. Returns true only for
// the call that created the marker, so a retried evaluation never emits
// the unlock event twice.
func (s *store) RecordUnlock(userID, milestoneID string, unlockedAt int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO milestone_unlocks (user_id, milestone_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, milestone_id) DO NOTHING;
	`, userID, milestoneID, unlockedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record milestone unlock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetUnlocked returns the ids of every milestone the user has unlocked.
func (s *store) GetUnlocked(userID string) ([]string, error) {
	rows, err := s.db.Query("SELECT milestone_id FROM milestone_unlocks WHERE user_id = ? ORDER BY unlocked_at ASC", userID)
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
	return ids, rows.Err()
}

// BonusXP sums the one-time XP bonuses of the user's unlocked milestones.
// Bonuses are composed into total XP at query time and never fed back into
// the delta stream, which keeps the evaluator loop-free.
func (s *store) BonusXP(userID string) (int64, error) {
	ids, err := s.GetUnlocked(userID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, id := range ids {
		if m, ok := ByID(id); ok {
			total += m.BonusXP
		}
	}
	return total, nil
}

// Clear wipes all unlocks. Test support.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM milestone_unlocks"); err != nil {
		log.Error("Failed to clear milestone_unlocks table", "error", err)
	}
}
