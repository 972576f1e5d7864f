package ranking

import (
	"fmt"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
)

// AllTimeKey is the period key of the single all-time bucket.
const AllTimeKey = "alltime"

// PeriodKeyFor computes the bucket key a timestamp falls into: ISO week
// ("2024-W52"), calendar month ("2024-12"), year ("2024") or the all-time
// bucket.
func PeriodKeyFor(p Period, at time.Time) string {
	at = at.UTC()
	switch p {
	case PeriodWeek:
		year, week := at.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodMonth:
		return at.Format("2006-01")
	case PeriodYear:
		return at.Format("2006")
	default:
		return AllTimeKey
	}
}

// DeltasFromResult converts one participant's game result into its four
// period increments. The deltas are additive and identical except for the
// bucket they land in.
func DeltasFromResult(res *games.GameResult) []Delta {
	playedAt := time.Unix(res.PlayedAt, 0)
	deltas := make([]Delta, 0, len(Periods()))
	for _, p := range Periods() {
		d := Delta{
			UserID:       res.UserID,
			Period:       p,
			PeriodKey:    PeriodKeyFor(p, playedAt),
			UserName:     res.UserName,
			UserPhoto:    res.UserPhoto,
			Nickname:     res.Nickname,
			GoalsAdded:   int64(res.GoalsScored),
			AssistsAdded: int64(res.Assists),
			SavesAdded:   int64(res.Saves),
			XPAdded:      res.XPEarned,
			GamesAdded:   1,
			UpdatedAt:    res.PlayedAt,
		}
		if res.Won {
			d.WinsAdded = 1
		}
		if res.WasMVP {
			d.MVPAdded = 1
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// DeltaID is the processed-marker key for one game's contribution to one
// bucket. Merging is exactly-once per marker.
func DeltaID(gameID string, d *Delta) string {
	return gameID + ":" + d.UserID + ":" + string(d.Period) + ":" + d.PeriodKey
}
