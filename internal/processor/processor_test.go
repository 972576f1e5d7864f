package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/cache"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/league"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/notifier"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEvaluator is a spy implementation of the Evaluator interface.
type mockEvaluator struct {
	EvaluateFunc  func(userID string, stats milestone.Stats, now int64) ([]milestone.Unlock, error)
	EvaluateCalls []struct {
		UserID string
		Stats  milestone.Stats
	}
}

func (m *mockEvaluator) Evaluate(userID string, stats milestone.Stats, now int64) ([]milestone.Unlock, error) {
	m.EvaluateCalls = append(m.EvaluateCalls, struct {
		UserID string
		Stats  milestone.Stats
	}{userID, stats})
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(userID, stats, now)
	}
	return nil, nil
}

type fixture struct {
	games     *games.MockStore
	seasons   *season.MockStore
	rankings  *ranking.MockStore
	evaluator *mockEvaluator
	notifier  *notifier.Mock
	cache     *cache.Mock
	pubsub    *pubsub.MockPubSubClient
	metrics   *metrics.Mock
	processor *Processor
}

func newFixture() *fixture {
	f := &fixture{
		games:     games.NewMock(),
		seasons:   season.NewMock(),
		rankings:  ranking.NewMock(),
		evaluator: &mockEvaluator{},
		notifier:  notifier.NewMock(),
		cache:     cache.NewMock(),
		pubsub:    pubsub.NewMock("TEST"),
		metrics:   metrics.NewMock(),
	}
	f.processor = New(f.games, f.seasons, f.rankings, f.evaluator, f.notifier, f.cache, f.metrics, f.pubsub)
	return f
}

func newResult() *games.GameResult {
	return &games.GameResult{
		GameID:           "g1",
		UserID:           "u1",
		SeasonID:         "s1",
		UserName:         "Zico",
		XPEarned:         120,
		Won:              true,
		GoalsScored:      2,
		GoalsConceded:    1,
		PlayedAt:         time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC).Unix(),
		ProcessingStatus: games.StatusNew,
	}
}

func TestProcessResults_FullPipeline(t *testing.T) {
	f := newFixture()
	res := newResult()
	f.games.GetResultsForProcessingFunc = func() ([]*games.GameResult, error) {
		return []*games.GameResult{res}, nil
	}

	f.processor.ProcessResults(false)

	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus)
	require.Len(t, f.seasons.SaveCalls, 1, "Season should be updated once")
	assert.Equal(t, "g1", f.seasons.SaveCalls[0].GameID)
	require.Len(t, f.rankings.ApplyGameDeltaCalls, 4, "One delta per period bucket")
	require.Len(t, f.evaluator.EvaluateCalls, 1, "Milestones should be evaluated once")
	assert.Equal(t, 1, f.metrics.EventsProcessed())

	// Every bucket touched by a merge gets its cache invalidated.
	assert.Len(t, f.cache.InvalidateBucketCalls, 4)

	// NEW -> SEASON_UPDATED -> DELTAS_MERGED -> MILESTONES_EVALUATED -> COMPLETED
	require.Len(t, f.games.UpdateProcessingStatusCalls, 4)
	assert.Equal(t, games.StatusSeasonUpdated, f.games.UpdateProcessingStatusCalls[0].Status)
	assert.Equal(t, games.StatusCompleted, f.games.UpdateProcessingStatusCalls[3].Status)
}

func TestProcessResult_InvalidResultIsRejected(t *testing.T) {
	f := newFixture()
	res := newResult()
	res.UserID = "" // fails validation

	f.processor.ProcessResult(res, false)

	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus)
	assert.Empty(t, f.seasons.SaveCalls, "No season update for an invalid result")
	assert.Empty(t, f.rankings.ApplyGameDeltaCalls)
	assert.Empty(t, f.evaluator.EvaluateCalls)
}

func TestProcessResult_RetriesOnVersionConflict(t *testing.T) {
	f := newFixture()
	res := newResult()

	attempts := 0
	f.seasons.SaveFunc = func(p *season.Participation, gameID string) error {
		attempts++
		if attempts == 1 {
			return season.ErrConcurrentModification
		}
		return nil
	}

	f.processor.ProcessResult(res, false)

	assert.Equal(t, 2, attempts, "Save should be retried after a version conflict")
	assert.Equal(t, 1, f.metrics.SeasonRetries())
	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus)
}

func TestProcessResult_DuplicateGameAdvances(t *testing.T) {
	f := newFixture()
	res := newResult()

	f.seasons.SaveFunc = func(p *season.Participation, gameID string) error {
		return season.ErrAlreadyProcessed
	}
	f.rankings.ApplyGameDeltaFunc = func(gameID string, d *ranking.Delta) error {
		return ranking.ErrAlreadyProcessed
	}

	f.processor.ProcessResult(res, false)

	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus, "A duplicate should still complete the pipeline")
	assert.GreaterOrEqual(t, f.metrics.DuplicateEvents(), 1)
	assert.Empty(t, f.notifier.SendDivisionChangeNotificationCalls)
}

func TestProcessResult_StallsOnSeasonError(t *testing.T) {
	f := newFixture()
	res := newResult()

	f.seasons.SaveFunc = func(p *season.Participation, gameID string) error {
		return errors.New("disk full")
	}

	f.processor.ProcessResult(res, false)

	assert.Equal(t, games.StatusNew, res.ProcessingStatus, "The result should stay put and be retried next run")
	assert.Empty(t, f.games.UpdateProcessingStatusCalls)
	assert.Empty(t, f.rankings.ApplyGameDeltaCalls)
}

func TestProcessResult_DivisionChangeFansOut(t *testing.T) {
	f := newFixture()
	res := newResult()

	// Two promotion streak games already banked; this win is the third.
	part := season.NewParticipation("u1", "s1")
	part.Division = league.Bronze
	part.PromotionProgress = 2
	part.LeagueRating = 45
	part.Version = 1
	f.seasons.GetFunc = func(userID, seasonID string) (*season.Participation, error) {
		return part, nil
	}

	f.processor.ProcessResult(res, false)

	require.Len(t, f.notifier.SendDivisionChangeNotificationCalls, 1)
	call := f.notifier.SendDivisionChangeNotificationCalls[0]
	assert.Equal(t, "Zico", call.UserName)
	assert.True(t, call.Transition.Promoted)
	assert.Equal(t, 1, f.metrics.Promotions())

	var published []string
	for _, c := range f.pubsub.SendMessageCalls {
		published = append(published, c.Topic)
	}
	assert.Contains(t, published, string(pubsub.EventDivisionChanged))
}

func TestProcessResult_MilestoneUnlockFansOut(t *testing.T) {
	f := newFixture()
	res := newResult()

	f.rankings.GetUserDeltaFunc = func(_ context.Context, period ranking.Period, periodKey, userID string) (*ranking.Delta, error) {
		return &ranking.Delta{UserID: userID, GamesAdded: 1, GoalsAdded: 2, WinsAdded: 1, XPAdded: 120}, nil
	}
	f.evaluator.EvaluateFunc = func(userID string, stats milestone.Stats, now int64) ([]milestone.Unlock, error) {
		assert.Equal(t, int64(1), stats.GamesPlayed)
		assert.Equal(t, int64(2), stats.Goals)
		return []milestone.Unlock{{EventID: "e1", UserID: userID, MilestoneID: "first-game", UnlockedAt: now}}, nil
	}

	f.processor.ProcessResult(res, false)

	require.Len(t, f.notifier.SendMilestoneNotificationCalls, 1)
	assert.Equal(t, "Estreia", f.notifier.SendMilestoneNotificationCalls[0].Milestone.Name)
	assert.Equal(t, 1, f.metrics.MilestoneUnlocks())

	var published []string
	for _, c := range f.pubsub.SendMessageCalls {
		published = append(published, c.Topic)
	}
	assert.Contains(t, published, string(pubsub.EventMilestoneUnlocked))
}

func TestProcessResult_DryRunWritesNothing(t *testing.T) {
	f := newFixture()
	res := newResult()

	f.processor.ProcessResult(res, true)

	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus, "Dry run advances the in-memory state only")
	assert.Empty(t, f.games.UpdateProcessingStatusCalls, "No status writes in dry run")
	assert.Empty(t, f.seasons.SaveCalls)
	assert.Empty(t, f.rankings.ApplyGameDeltaCalls)
	assert.Empty(t, f.evaluator.EvaluateCalls)
	assert.Empty(t, f.pubsub.SendMessageCalls)
}

func TestProcessResult_ResumesFromPersistedStatus(t *testing.T) {
	f := newFixture()
	res := newResult()
	res.ProcessingStatus = games.StatusDeltasMerged

	f.processor.ProcessResult(res, false)

	assert.Empty(t, f.seasons.SaveCalls, "Earlier stages must not re-run")
	assert.Empty(t, f.rankings.ApplyGameDeltaCalls)
	require.Len(t, f.evaluator.EvaluateCalls, 1, "Processing resumes at milestone evaluation")
	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus)
}
