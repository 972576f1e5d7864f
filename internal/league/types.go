package league

// Division is one of the four skill tiers a player occupies for a season.
type Division int

const (
	Bronze Division = iota
	Silver
	Gold
	Diamond
)

// Rating cutoffs for each division. A rating at or above the cutoff
// qualifies for that division.
const (
	SilverCutoff  = 30.0
	GoldCutoff    = 50.0
	DiamondCutoff = 70.0
)

func (d Division) String() string {
	switch d {
	case Bronze:
		return "BRONZE"
	case Silver:
		return "SILVER"
	case Gold:
		return "GOLD"
	case Diamond:
		return "DIAMOND"
	}
	return "UNKNOWN"
}

// DisplayName returns the name shown to players.
func (d Division) DisplayName() string {
	switch d {
	case Bronze:
		return "Bronze"
	case Silver:
		return "Prata"
	case Gold:
		return "Ouro"
	case Diamond:
		return "Diamante"
	}
	return "Desconhecida"
}

// DivisionFromString parses the persisted representation of a division.
// Unrecognized values fall back to Bronze, the entry tier.
func DivisionFromString(s string) Division {
	switch s {
	case "SILVER":
		return Silver
	case "GOLD":
		return Gold
	case "DIAMOND":
		return Diamond
	default:
		return Bronze
	}
}

// RecentGame is one entry in a player's rolling window: the per-game facts
// the rating formula consumes. Immutable once recorded.
type RecentGame struct {
	GameID   string `json:"game_id"`
	XPEarned int64  `json:"xp_earned"`
	Won      bool   `json:"won"`
	Drew     bool   `json:"drew"`
	GoalDiff int    `json:"goal_diff"`
	WasMVP   bool   `json:"was_mvp"`
	PlayedAt int64  `json:"played_at"`
}
