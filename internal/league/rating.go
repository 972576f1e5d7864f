package league

// Weights of the four rating components. They sum to 1.0 so the final
// rating stays in [0, 100].
const (
	weightXPPerGame = 0.4
	weightWinRate   = 0.3
	weightGoalDiff  = 0.2
	weightMVPRate   = 0.1

	// xpPerGameCeiling is the average XP per game that scores a full 100
	// on the XP component.
	xpPerGameCeiling = 200.0

	// mvpRateCeiling is the MVP rate (MVPs per game) that scores a full
	// 100 on the MVP component.
	mvpRateCeiling = 0.5
)

// Rating computes the league rating for a rolling window of recent games.
// An empty window rates 0. The result is always in [0, 100].
func Rating(window []RecentGame) float64 {
	n := len(window)
	if n == 0 {
		return 0.0
	}

	var totalXP int64
	var wins, mvps int
	var goalDiffSum int
	for _, g := range window {
		totalXP += g.XPEarned
		goalDiffSum += g.GoalDiff
		if g.Won {
			wins++
		}
		if g.WasMVP {
			mvps++
		}
	}

	avgXP := float64(totalXP) / float64(n)
	xpScore := min(avgXP/xpPerGameCeiling, 1.0) * 100

	winRate := float64(wins) / float64(n) * 100

	avgGoalDiff := float64(goalDiffSum) / float64(n)
	gdScore := clamp((avgGoalDiff+3)/6, 0, 1) * 100

	mvpRate := float64(mvps) / float64(n)
	mvpScore := min(mvpRate/mvpRateCeiling, 1.0) * 100

	rating := weightXPPerGame*xpScore + weightWinRate*winRate + weightGoalDiff*gdScore + weightMVPRate*mvpScore
	return clamp(rating, 0, 100)
}

// DivisionForRating maps a rating to its division. Cutoffs are inclusive:
// exactly 70.0 is Diamond.
func DivisionForRating(rating float64) Division {
	switch {
	case rating >= DiamondCutoff:
		return Diamond
	case rating >= GoldCutoff:
		return Gold
	case rating >= SilverCutoff:
		return Silver
	default:
		return Bronze
	}
}

// PromotionCutoff returns the rating needed to qualify for the next
// division up, used for progress bars. At Diamond there is no next tier
// and the ceiling of the scale is returned.
func PromotionCutoff(d Division) float64 {
	switch d {
	case Bronze:
		return SilverCutoff
	case Silver:
		return GoldCutoff
	case Gold:
		return DiamondCutoff
	default:
		return 100.0
	}
}

// RelegationCutoff returns the rating below which a player qualifies for
// the division below. Bronze is the floor and returns 0.
func RelegationCutoff(d Division) float64 {
	switch d {
	case Diamond:
		return DiamondCutoff
	case Gold:
		return GoldCutoff
	case Silver:
		return SilverCutoff
	default:
		return 0.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
