package milestone

import (
	"database/sql"
	"sync"
)

// Stat is the cumulative counter a milestone threshold is checked against.
// A closed enum with an explicit accessor (Stats.Value) instead of
// field-name dispatch.
type Stat string

const (
	StatGames   Stat = "games"
	StatGoals   Stat = "goals"
	StatAssists Stat = "assists"
	StatSaves   Stat = "saves"
	StatWins    Stat = "wins"
	StatMVPs    Stat = "mvps"
	StatXP      Stat = "xp"
)

// Stats is a snapshot of a user's cumulative all-time counters.
type Stats struct {
	GamesPlayed int64
	Goals       int64
	Assists     int64
	Saves       int64
	Wins        int64
	MVPs        int64
	XP          int64
}

// Value returns the counter for one stat.
func (s Stats) Value(stat Stat) int64 {
	switch stat {
	case StatGames:
		return s.GamesPlayed
	case StatGoals:
		return s.Goals
	case StatAssists:
		return s.Assists
	case StatSaves:
		return s.Saves
	case StatWins:
		return s.Wins
	case StatMVPs:
		return s.MVPs
	case StatXP:
		return s.XP
	}
	return 0
}

// Milestone is a one-time cumulative-threshold achievement. Distinct from
// repeatable per-game badges: each milestone unlocks at most once per user.
type Milestone struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stat        Stat   `json:"stat"`
	Threshold   int64  `json:"threshold"`
	BonusXP     int64  `json:"bonus_xp"`
}

// Unlock is the event emitted the first time a user crosses a milestone
// threshold.
type Unlock struct {
	EventID     string `json:"event_id" msgpack:"event_id"`
	UserID      string `json:"user_id" msgpack:"user_id"`
	MilestoneID string `json:"milestone_id" msgpack:"milestone_id"`
	UnlockedAt  int64  `json:"unlocked_at" msgpack:"unlocked_at"`
}

// store handles milestone unlock persistence.
type store struct {
	db *sql.DB
	mu sync.Mutex
}
