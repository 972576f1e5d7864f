package ranking

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Period is a leaderboard time bucket.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
	PeriodAllTime Period = "alltime"
)

// Periods lists every bucket a game contributes to.
func Periods() []Period {
	return []Period{PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime}
}

// Category is one leaderboard dimension. Categories are a closed enum with
// an explicit accessor per category (see Delta.ValueFor) rather than
// field-name dispatch.
type Category string

const (
	CategoryGoals   Category = "goals"
	CategoryAssists Category = "assists"
	CategorySaves   Category = "saves"
	CategoryXP      Category = "xp"
	CategoryMVP     Category = "mvp"
	CategoryWinRate Category = "winrate"
)

// Categories lists every leaderboard dimension.
func Categories() []Category {
	return []Category{CategoryGoals, CategoryAssists, CategorySaves, CategoryXP, CategoryMVP, CategoryWinRate}
}

// ParseCategory validates a category coming from the query surface.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryGoals, CategoryAssists, CategorySaves, CategoryXP, CategoryMVP, CategoryWinRate:
		return c, nil
	}
	return "", fmt.Errorf("unknown ranking category %q", s)
}

// ParsePeriod validates a period coming from the query surface.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return p, nil
	}
	return "", fmt.Errorf("unknown ranking period %q", s)
}

// DefaultMinGames is the eligibility floor for externally visible top-N
// views. Entries below it keep accumulating but stay hidden.
const DefaultMinGames = 2

var (
	// ErrAlreadyProcessed is returned when a game's contribution to a
	// leaderboard bucket was already merged. Treated as success by callers.
	ErrAlreadyProcessed = errors.New("ranking delta already processed")

	// ErrNotFound is returned when no document exists for a key.
	ErrNotFound = errors.New("ranking document not found")
)

// Delta is the additive per-(user, period, periodKey) increment record
// feeding the leaderboard projections. Never decremented; corrections are
// compensating negative deltas.
type Delta struct {
	UserID      string `json:"user_id"`
	Period      Period `json:"period"`
	PeriodKey   string `json:"period_key"`
	UserName    string `json:"user_name"`
	UserPhoto   string `json:"user_photo"`
	Nickname    string `json:"nickname"`
	GoalsAdded  int64  `json:"goals_added"`
	AssistsAdded int64 `json:"assists_added"`
	SavesAdded  int64  `json:"saves_added"`
	XPAdded     int64  `json:"xp_added"`
	GamesAdded  int64  `json:"games_added"`
	WinsAdded   int64  `json:"wins_added"`
	MVPAdded    int64  `json:"mvp_added"`
	UpdatedAt   int64  `json:"updated_at"`
}

// ValueFor returns the increment this delta contributes to one category.
// The winrate board accumulates wins; the per-entry average exposes the
// rate itself.
func (d *Delta) ValueFor(c Category) int64 {
	switch c {
	case CategoryGoals:
		return d.GoalsAdded
	case CategoryAssists:
		return d.AssistsAdded
	case CategorySaves:
		return d.SavesAdded
	case CategoryXP:
		return d.XPAdded
	case CategoryMVP:
		return d.MVPAdded
	case CategoryWinRate:
		return d.WinsAdded
	}
	return 0
}

// Entry is one row of a leaderboard document.
type Entry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name"`
	UserPhoto   string  `json:"user_photo,omitempty"`
	Nickname    string  `json:"nickname,omitempty"`
	Value       int64   `json:"value"`
	GamesPlayed int64   `json:"games_played"`
	Average     float64 `json:"average"`
}

// Document is a derived, rebuildable leaderboard projection for one
// (period, periodKey, category). It can always be reconstructed by
// replaying the delta rows for its bucket.
type Document struct {
	ID        string   `json:"id"`
	Period    Period   `json:"period"`
	PeriodKey string   `json:"period_key"`
	Category  Category `json:"category"`
	Entries   []Entry  `json:"entries"`
	MinGames  int64    `json:"min_games"`
	UpdatedAt int64    `json:"updated_at"`
}

// DocumentID builds the identity key of a leaderboard document.
func DocumentID(period Period, periodKey string, category Category) string {
	return string(period) + ":" + periodKey + ":" + string(category)
}

// BucketKey identifies a (period, periodKey) leaderboard bucket, the unit
// of merge serialization.
func BucketKey(period Period, periodKey string) string {
	return string(period) + ":" + periodKey
}

// store handles all database operations for leaderboards. Merges for the
// same bucket are serialized by a per-bucket lock; different buckets
// proceed in parallel.
type store struct {
	db *sql.DB

	mu      sync.Mutex
	buckets map[string]*sync.Mutex
}

func (s *store) bucketLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets == nil {
		s.buckets = make(map[string]*sync.Mutex)
	}
	l, ok := s.buckets[key]
	if !ok {
		l = &sync.Mutex{}
		s.buckets[key] = l
	}
	return l
}
