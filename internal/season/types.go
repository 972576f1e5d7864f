package season

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/league"
)

const (
	// WindowCapacity is the size of the rolling window the rating is
	// computed over. Oldest games are evicted FIFO.
	WindowCapacity = 10

	// QualifyingStreak is how many consecutive qualifying games are needed
	// before a division change takes effect.
	QualifyingStreak = 3

	// ProtectionLength is how many relegation-qualifying games a freshly
	// promoted player is immune for.
	ProtectionLength = 5
)

var (
	// ErrNotFound is returned when no participation exists for (user, season).
	ErrNotFound = errors.New("season participation not found")

	// ErrConcurrentModification is returned when a save loses an optimistic
	// write race. The caller should re-read and retry.
	ErrConcurrentModification = errors.New("season participation was modified concurrently")

	// ErrAlreadyProcessed is returned when a game has already been applied
	// to a participation. Treated as success by callers.
	ErrAlreadyProcessed = errors.New("game already applied to season participation")
)

// Participation is the per-(user, season) competitive aggregate. One record
// per user per season, created on the first game and mutated after every
// game of that user in that season.
type Participation struct {
	UserID             string              `json:"user_id"`
	SeasonID           string              `json:"season_id"`
	Division           league.Division     `json:"division"`
	Points             int                 `json:"points"`
	GamesPlayed        int                 `json:"games_played"`
	Wins               int                 `json:"wins"`
	Draws              int                 `json:"draws"`
	Losses             int                 `json:"losses"`
	GoalsScored        int                 `json:"goals_scored"`
	GoalsConceded      int                 `json:"goals_conceded"`
	Assists            int                 `json:"assists"`
	MVPCount           int                 `json:"mvp_count"`
	LeagueRating       float64             `json:"league_rating"`
	PromotionProgress  int                 `json:"promotion_progress"`
	RelegationProgress int                 `json:"relegation_progress"`
	ProtectionGames    int                 `json:"protection_games"`
	RecentGames        []league.RecentGame `json:"recent_games"`
	LastCalculatedAt   int64               `json:"last_calculated_at"`

	// Version guards optimistic writes. Zero means the record has never
	// been persisted.
	Version int64 `json:"version"`
}

// NewParticipation creates the first-game record for a user in a season.
func NewParticipation(userID, seasonID string) *Participation {
	return &Participation{
		UserID:   userID,
		SeasonID: seasonID,
		Division: league.Bronze,
	}
}

// GoalDifference is derived, never stored independently in memory.
func (p *Participation) GoalDifference() int {
	return p.GoalsScored - p.GoalsConceded
}

// Transition describes what a game application did to the division state,
// for notifications.
type Transition struct {
	Promoted bool
	Demoted  bool
	From     league.Division
	To       league.Division
}

// Changed reports whether the division moved.
func (t Transition) Changed() bool {
	return t.Promoted || t.Demoted
}

// store handles all database operations for season participations.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
