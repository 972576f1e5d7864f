package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/notifier"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	counters  metrics.MetricsStore
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics, counters metrics.MetricsStore) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		counters:  counters,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics, counters metrics.MetricsStore) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		counters:  counters,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		if s.counters != nil {
			s.counters.Increment("slack_notifications_failed")
		}
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	if s.counters != nil {
		s.counters.Increment("slack_notifications_sent")
	}
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendMilestoneNotification(userName string, m milestone.Milestone, dryRun bool) error {
	msg := s.formatMilestoneNotification(userName, m)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendDivisionChangeNotification(userName string, t season.Transition, dryRun bool) error {
	msg := s.formatDivisionChangeNotification(userName, t)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(period ranking.Period, category ranking.Category, entries []ranking.Entry, dryRun bool) error {
	msg := s.formatLeaderboard(period, category, entries)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatMilestoneNotification creates the Slack message for a milestone unlock using Block Kit.
func (s *Notifier) formatMilestoneNotification(userName string, m milestone.Milestone) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏅 Novo marco desbloqueado! 🏅", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s desbloqueou *%s*\n_%s_", userName, m.Name, m.Description)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", detailsText, false, false), nil, nil))

	if m.BonusXP > 0 {
		bonusText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Bônus: *+%d XP*", m.BonusXP), false, false)
		blocks = append(blocks, slack.NewContextBlock("", bonusText))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatDivisionChangeNotification creates the Slack message for a promotion or relegation.
func (s *Notifier) formatDivisionChangeNotification(userName string, t season.Transition) slack.Message {
	blocks := make([]slack.Block, 0)

	var headerStr, detailsStr string
	if t.Promoted {
		headerStr = "📈 Subiu de divisão! 📈"
		detailsStr = fmt.Sprintf("%s subiu da divisão *%s* para a *%s*", userName, t.From.DisplayName(), t.To.DisplayName())
	} else {
		headerStr = "📉 Caiu de divisão 📉"
		detailsStr = fmt.Sprintf("%s caiu da divisão *%s* para a *%s*", userName, t.From.DisplayName(), t.To.DisplayName())
	}

	headerText := slack.NewTextBlockObject("plain_text", headerStr, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", detailsStr, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates the Slack message for a leaderboard announcement.
func (s *Notifier) formatLeaderboard(period ranking.Period, category ranking.Category, entries []ranking.Entry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("⚽ Ranking de %s (%s) ⚽", categoryLabel(category), periodLabel(period)), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		empty := slack.NewTextBlockObject("plain_text", "Ninguém qualificado ainda. Bora jogar!", true, false)
		blocks = append(blocks, slack.NewSectionBlock(empty, nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var sb strings.Builder
	for _, e := range entries {
		name := e.UserName
		if e.Nickname != "" {
			name = e.Nickname
		}
		sb.WriteString(fmt.Sprintf("%s *%s* — %d (%d jogos)\n", rankEmoji(e.Rank), name, e.Value, e.GamesPlayed))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", sb.String(), false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func rankEmoji(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

func categoryLabel(c ranking.Category) string {
	switch c {
	case ranking.CategoryGoals:
		return "Gols"
	case ranking.CategoryAssists:
		return "Assistências"
	case ranking.CategorySaves:
		return "Defesas"
	case ranking.CategoryXP:
		return "XP"
	case ranking.CategoryMVP:
		return "MVPs"
	case ranking.CategoryWinRate:
		return "Vitórias"
	default:
		return string(c)
	}
}

func periodLabel(p ranking.Period) string {
	switch p {
	case ranking.PeriodWeek:
		return "semana"
	case ranking.PeriodMonth:
		return "mês"
	case ranking.PeriodYear:
		return "ano"
	case ranking.PeriodAllTime:
		return "geral"
	default:
		return string(p)
	}
}
