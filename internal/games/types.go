package games

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ProcessingStatus tracks how far through the pipeline a game result has
// advanced. Results are processed by the state machine in the processor
// package and every transition is persisted, so a crashed run resumes
// where it left off.
type ProcessingStatus string

const (
	StatusNew                 ProcessingStatus = "NEW"
	StatusSeasonUpdated       ProcessingStatus = "SEASON_UPDATED"
	StatusDeltasMerged        ProcessingStatus = "DELTAS_MERGED"
	StatusMilestonesEvaluated ProcessingStatus = "MILESTONES_EVALUATED"
	StatusCompleted           ProcessingStatus = "COMPLETED"
)

// ErrInvalidResult is returned when a game result payload fails validation.
// Invalid results are rejected before any state is mutated.
var ErrInvalidResult = errors.New("invalid game result")

// GameResult is one participant's outcome in one finished game, as
// delivered by the game-completion feed. Immutable once recorded.
type GameResult struct {
	GameID        string `json:"game_id" msgpack:"game_id"`
	UserID        string `json:"user_id" msgpack:"user_id"`
	SeasonID      string `json:"season_id" msgpack:"season_id"`
	UserName      string `json:"user_name" msgpack:"user_name"`
	UserPhoto     string `json:"user_photo" msgpack:"user_photo"`
	Nickname      string `json:"nickname" msgpack:"nickname"`
	XPEarned      int64  `json:"xp_earned" msgpack:"xp_earned"`
	Won           bool   `json:"won" msgpack:"won"`
	Drew          bool   `json:"drew" msgpack:"drew"`
	GoalsScored   int    `json:"goals_scored" msgpack:"goals_scored"`
	GoalsConceded int    `json:"goals_conceded" msgpack:"goals_conceded"`
	Assists       int    `json:"assists" msgpack:"assists"`
	Saves         int    `json:"saves" msgpack:"saves"`
	WasMVP        bool   `json:"was_mvp" msgpack:"was_mvp"`
	PlayedAt      int64  `json:"played_at" msgpack:"played_at"`

	ProcessingStatus ProcessingStatus `json:"processing_status" msgpack:"-"`
}

// EventID is the idempotency key for this result: one game contributes at
// most one result per participant.
func (r *GameResult) EventID() string {
	return r.GameID + ":" + r.UserID
}

// GoalDiff is the score margin from this participant's perspective.
func (r *GameResult) GoalDiff() int {
	return r.GoalsScored - r.GoalsConceded
}

// Validate rejects malformed results. The caller must not mutate any state
// for a result that fails validation.
func (r *GameResult) Validate() error {
	if r.GameID == "" || r.UserID == "" || r.SeasonID == "" {
		return fmt.Errorf("%w: missing game, user or season id", ErrInvalidResult)
	}
	if r.XPEarned < 0 {
		return fmt.Errorf("%w: negative xp", ErrInvalidResult)
	}
	if r.GoalsScored < 0 || r.GoalsConceded < 0 || r.Assists < 0 || r.Saves < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidResult)
	}
	if r.Won && r.Drew {
		return fmt.Errorf("%w: result cannot be both a win and a draw", ErrInvalidResult)
	}
	if r.PlayedAt < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidResult)
	}
	return nil
}

// store handles game-result intake persistence.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
