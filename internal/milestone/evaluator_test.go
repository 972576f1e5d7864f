package milestone

import (
	"testing"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) Store {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err, "Failed to initialize test database")
	t.Cleanup(teardown)
	return New(db)
}

func TestEvaluate_FirstCrossingUnlocks(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	unlocks, err := eval.Evaluate("user-1", Stats{GamesPlayed: 1, Goals: 1}, 1000)
	require.NoError(t, err)
	require.Len(t, unlocks, 2)

	ids := []string{unlocks[0].MilestoneID, unlocks[1].MilestoneID}
	assert.Contains(t, ids, "first-game")
	assert.Contains(t, ids, "first-goal")
	for _, u := range unlocks {
		assert.Equal(t, "user-1", u.UserID)
		assert.NotEmpty(t, u.EventID)
		assert.Equal(t, int64(1000), u.UnlockedAt)
	}
}

func TestEvaluate_ReEvaluationIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	first, err := eval.Evaluate("user-1", Stats{GamesPlayed: 12, Wins: 10}, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := eval.Evaluate("user-1", Stats{GamesPlayed: 12, Wins: 10}, 2000)
	require.NoError(t, err)
	assert.Empty(t, second, "re-evaluating the same stats should unlock nothing")
}

func TestEvaluate_BelowThresholdIsNoOp(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	unlocks, err := eval.Evaluate("user-1", Stats{}, 1000)
	require.NoError(t, err)
	assert.Empty(t, unlocks)

	ids, err := store.GetUnlocked("user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEvaluate_ProgressionUnlocksIncrementally(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	unlocks, err := eval.Evaluate("user-1", Stats{GamesPlayed: 1}, 1000)
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "first-game", unlocks[0].MilestoneID)

	unlocks, err = eval.Evaluate("user-1", Stats{GamesPlayed: 10, MVPs: 1}, 2000)
	require.NoError(t, err)
	require.Len(t, unlocks, 2)
	ids := []string{unlocks[0].MilestoneID, unlocks[1].MilestoneID}
	assert.Contains(t, ids, "games-10")
	assert.Contains(t, ids, "first-mvp")
}

func TestEvaluate_IsolatedPerUser(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	_, err := eval.Evaluate("user-1", Stats{GamesPlayed: 1}, 1000)
	require.NoError(t, err)

	unlocks, err := eval.Evaluate("user-2", Stats{GamesPlayed: 1}, 1000)
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "first-game", unlocks[0].MilestoneID)
}

func TestBonusXP_SumsUnlockedMilestones(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	// first-game (50) + games-10 (100) + first-goal (50) + first-mvp (100)
	_, err := eval.Evaluate("user-1", Stats{GamesPlayed: 10, Goals: 1, MVPs: 1}, 1000)
	require.NoError(t, err)

	bonus, err := store.BonusXP("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), bonus)

	bonus, err = store.BonusXP("user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bonus)
}

func TestClear_AllowsReplay(t *testing.T) {
	store := setupTestStore(t)
	eval := NewEvaluator(store)

	first, err := eval.Evaluate("user-1", Stats{GamesPlayed: 1}, 1000)
	require.NoError(t, err)
	require.Len(t, first, 1)

	store.Clear()

	again, err := eval.Evaluate("user-1", Stats{GamesPlayed: 1}, 2000)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}
