package milestone

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Evaluator checks a user's career stats against the catalog and records
// newly crossed milestones.
type Evaluator struct {
	store Store
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate compares the stats against every catalog entry and records the
// milestones crossed for the first time. It returns one Unlock per newly
// recorded milestone; re-evaluating the same stats returns nothing new.
func (e *Evaluator) Evaluate(userID string, stats Stats, now int64) ([]Unlock, error) {
	var unlocks []Unlock
	for _, m := range Catalog() {
		if stats.Value(m.Stat) < m.Threshold {
			continue
		}
		created, err := e.store.RecordUnlock(userID, m.ID, now)
		if err != nil {
			return unlocks, fmt.Errorf("failed to record unlock of %s: %w", m.ID, err)
		}
		if !created {
			continue
		}
		log.Info("Milestone unlocked", "userID", userID, "milestoneID", m.ID, "name", m.Name)
		unlocks = append(unlocks, Unlock{
			EventID:     uuid.NewString(),
			UserID:      userID,
			MilestoneID: m.ID,
			UnlockedAt:  now,
		})
	}
	return unlocks, nil
}
