package notifier

import (
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For a user crossing a milestone threshold
	SendMilestoneNotification(userName string, m milestone.Milestone, dryRun bool) error
	// For a promotion or relegation
	SendDivisionChangeNotification(userName string, t season.Transition, dryRun bool) error
	// For periodic leaderboard announcements
	SendLeaderboard(period ranking.Period, category ranking.Category, entries []ranking.Entry, dryRun bool) error
}
