package season

import (
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/league"
)

// ApplyGame folds one game result into the participation: rolling window,
// cumulative counters, recomputed rating and the division state machine.
// Pure in-memory mutation; persistence and the at-most-once guarantee are
// the store's job.
func (p *Participation) ApplyGame(res *games.GameResult, now int64) Transition {
	p.appendToWindow(league.RecentGame{
		GameID:   res.GameID,
		XPEarned: res.XPEarned,
		Won:      res.Won,
		Drew:     res.Drew,
		GoalDiff: res.GoalDiff(),
		WasMVP:   res.WasMVP,
		PlayedAt: res.PlayedAt,
	})

	p.GamesPlayed++
	switch {
	case res.Won:
		p.Wins++
		p.Points += 3
	case res.Drew:
		p.Draws++
		p.Points++
	default:
		p.Losses++
	}
	p.GoalsScored += res.GoalsScored
	p.GoalsConceded += res.GoalsConceded
	p.Assists += res.Assists
	if res.WasMVP {
		p.MVPCount++
	}

	p.LeagueRating = league.Rating(p.RecentGames)
	transition := p.advanceDivision(league.DivisionForRating(p.LeagueRating))
	p.LastCalculatedAt = now
	return transition
}

func (p *Participation) appendToWindow(g league.RecentGame) {
	p.RecentGames = append(p.RecentGames, g)
	if len(p.RecentGames) > WindowCapacity {
		p.RecentGames = p.RecentGames[len(p.RecentGames)-WindowCapacity:]
	}
}

// advanceDivision runs the hysteresis state machine. A division change
// takes effect only after QualifyingStreak consecutive qualifying games. A
// neutral game resets both counters: no partial credit carries across it.
func (p *Participation) advanceDivision(target league.Division) Transition {
	t := Transition{From: p.Division, To: p.Division}

	switch {
	case target > p.Division:
		p.PromotionProgress++
		p.RelegationProgress = 0
		if p.PromotionProgress >= QualifyingStreak {
			p.Division++
			p.PromotionProgress = 0
			p.RelegationProgress = 0
			p.ProtectionGames = ProtectionLength
			t.Promoted = true
			t.To = p.Division
		}

	case target < p.Division:
		if p.ProtectionGames > 0 {
			// Grace period after promotion: the game burns a protection
			// charge instead of counting toward relegation.
			p.ProtectionGames--
			p.PromotionProgress = 0
			return t
		}
		p.RelegationProgress++
		p.PromotionProgress = 0
		if p.RelegationProgress >= QualifyingStreak {
			p.Division--
			p.PromotionProgress = 0
			p.RelegationProgress = 0
			t.Demoted = true
			t.To = p.Division
		}

	default:
		p.PromotionProgress = 0
		p.RelegationProgress = 0
	}

	return t
}
