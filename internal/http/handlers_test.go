package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/cache"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/config"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/database"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/notifier"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/processor"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	gamesStore := games.New(db)
	seasons := season.New(db)
	rankings := ranking.New(db)
	milestones := milestone.New(db)
	counters := metrics.New(db)
	cfg := config.Config{SeasonID: "s1"}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	notif := notifier.NewMock()
	ps := pubsub.NewMock("TEST")
	lbCache := cache.NewMock()
	evaluator := milestone.NewEvaluator(milestones)
	proc := processor.New(gamesStore, seasons, rankings, evaluator, notif, lbCache, metricsSvc, ps)

	return NewServer(gamesStore, seasons, rankings, milestones, metricsSvc, counters, metricsHandler, cfg, notif, proc, lbCache, ps)
}

// pushRequest wraps a payload the way a Pub/Sub push subscription does:
// msgpack, base64, JSON envelope.
func pushRequest(t *testing.T, target string, payload any) *http.Request {
	t.Helper()

	raw, err := msgpack.Marshal(payload)
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/game-completed",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(raw),
		},
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", target, bytes.NewReader(body))
	require.NoError(t, err)
	return req
}

func completedGame(gameID, userID string) *games.GameResult {
	return &games.GameResult{
		GameID:      gameID,
		UserID:      userID,
		SeasonID:    "s1",
		UserName:    "Zico",
		XPEarned:    120,
		Won:         true,
		GoalsScored: 2,
		Assists:     1,
		PlayedAt:    time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC).Unix(),
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestGameCompletedHandler_RunsPipeline(t *testing.T) {
	server := setupTestServer(t)

	req := pushRequest(t, "/game-completed", completedGame("g1", "u1"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	// The result landed and completed the pipeline.
	res, err := server.Games.GetResult("g1:u1")
	require.NoError(t, err)
	assert.Equal(t, games.StatusCompleted, res.ProcessingStatus)

	// Season state reflects the game.
	part, err := server.Seasons.Get("u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, part.GamesPlayed)
	assert.Equal(t, 3, part.Points)

	// Leaderboards picked up the delta.
	doc, err := server.Rankings.GetDocument(ranking.PeriodAllTime, ranking.AllTimeKey, ranking.CategoryGoals)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, int64(2), doc.Entries[0].Value)

	// First game milestone unlocked.
	unlocked, err := server.Milestones.GetUnlocked("u1")
	require.NoError(t, err)
	assert.Contains(t, unlocked, "first-game")
}

func TestGameCompletedHandler_DuplicateDeliveryIsIdempotent(t *testing.T) {
	server := setupTestServer(t)

	for range 2 {
		req := pushRequest(t, "/game-completed", completedGame("g1", "u1"))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	part, err := server.Seasons.Get("u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, part.GamesPlayed, "Redelivery must not double-count")

	doc, err := server.Rankings.GetDocument(ranking.PeriodAllTime, ranking.AllTimeKey, ranking.CategoryGoals)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, int64(2), doc.Entries[0].Value)
}

func TestGameCompletedHandler_InvalidEnvelope(t *testing.T) {
	server := setupTestServer(t)

	req, err := http.NewRequest("POST", "/game-completed", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGameCompletedHandler_RejectsInvalidResult(t *testing.T) {
	server := setupTestServer(t)

	bad := completedGame("g1", "u1")
	bad.GoalsScored = -3

	req := pushRequest(t, "/game-completed", bad)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Nothing was persisted for the rejected result.
	_, err := server.Games.GetResult("g1:u1")
	assert.ErrorIs(t, err, games.ErrNotFound)
	_, err = server.Seasons.Get("u1", "s1")
	assert.ErrorIs(t, err, season.ErrNotFound)
}

func TestSeasonStandingsHandler(t *testing.T) {
	server := setupTestServer(t)

	// Two users, one of them stronger.
	for i, g := range []*games.GameResult{completedGame("g1", "u1"), completedGame("g2", "u2")} {
		if i == 1 {
			g.Won = false
			g.Drew = true
			g.XPEarned = 40
			g.GoalsScored = 0
		}
		req := pushRequest(t, "/game-completed", g)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest("GET", "/season", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var standings []seasonStanding
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standings))
	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "u1", standings[0].UserID, "Higher rating ranks first")
	assert.Equal(t, "BRONZE", standings[0].Division)
	assert.Equal(t, 3, standings[0].Points)
	assert.Equal(t, 1, standings[1].Draws)
}

func TestLeaderboardHandler(t *testing.T) {
	server := setupTestServer(t)

	// Three games for u1 so it clears the minimum games threshold; one for u2.
	for _, g := range []*games.GameResult{completedGame("g1", "u1"), completedGame("g2", "u1"), completedGame("g3", "u1"), completedGame("g4", "u2")} {
		req := pushRequest(t, "/game-completed", g)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	t.Run("filters below min games", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/leaderboard?category=goals&period=alltime", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp leaderboardResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Entries, 1, "u2 has a single game and is filtered out")
		assert.Equal(t, "u1", resp.Entries[0].UserID)
		assert.Equal(t, int64(6), resp.Entries[0].Value)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/leaderboard?category=nonsense", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("serves cached document on second read", func(t *testing.T) {
		lbCache := server.Cache.(*cache.Mock)
		before := len(lbCache.SetDocumentCalls)

		req := httptest.NewRequest("GET", "/leaderboard?category=assists&period=alltime", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, lbCache.SetDocumentCalls, before+1, "First read populates the cache")

		rr = httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest("GET", "/leaderboard?category=assists&period=alltime", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, lbCache.SetDocumentCalls, before+1, "Second read is served from cache")
	})
}

func TestLevelHandlers(t *testing.T) {
	server := setupTestServer(t)

	t.Run("table", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/levels", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		body, err := io.ReadAll(rr.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Lenda")
	})

	t.Run("explicit xp", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/level?xp=950", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp levelResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Level)
		assert.Equal(t, "Peladeiro", resp.Name)
	})

	t.Run("user xp includes milestone bonuses", func(t *testing.T) {
		req := pushRequest(t, "/game-completed", completedGame("g1", "u1"))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest("GET", "/level?userID=u1", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp levelResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(120), resp.XP)
		assert.Greater(t, resp.BonusXP, int64(0), "first-game and first-goal bonuses should be present")
	})

	t.Run("missing params", func(t *testing.T) {
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest("GET", "/level", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMilestonesHandler(t *testing.T) {
	server := setupTestServer(t)

	req := pushRequest(t, "/game-completed", completedGame("g1", "u1"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest("GET", "/milestones?userID=u1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp milestonesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Catalog, len(milestone.Catalog()))
	assert.Contains(t, resp.Unlocked, "first-game")
}

func TestProcessResultsHandler_DrainsBacklog(t *testing.T) {
	server := setupTestServer(t)

	res := completedGame("g1", "u1")
	res.ProcessingStatus = games.StatusNew
	require.NoError(t, server.Games.UpsertResult(res))

	req := httptest.NewRequest("GET", "/process", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	stored, err := server.Games.GetResult("g1:u1")
	require.NoError(t, err)
	assert.Equal(t, games.StatusCompleted, stored.ProcessingStatus)
}

func TestProcessResultsHandler_DryRun(t *testing.T) {
	server := setupTestServer(t)

	res := completedGame("g1", "u1")
	res.ProcessingStatus = games.StatusNew
	require.NoError(t, server.Games.UpsertResult(res))

	req := httptest.NewRequest("GET", "/process?dry_run=true", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	stored, err := server.Games.GetResult("g1:u1")
	require.NoError(t, err)
	assert.Equal(t, games.StatusNew, stored.ProcessingStatus, "Dry run must not persist transitions")

	_, err = server.Seasons.Get("u1", "s1")
	assert.ErrorIs(t, err, season.ErrNotFound)
}

func TestRebuildHandler(t *testing.T) {
	server := setupTestServer(t)

	req := pushRequest(t, "/game-completed", completedGame("g1", "u1"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	target := fmt.Sprintf("/rebuild?period=alltime&periodKey=%s", ranking.AllTimeKey)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest("GET", target, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	doc, err := server.Rankings.GetDocument(ranking.PeriodAllTime, ranking.AllTimeKey, ranking.CategoryGoals)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, int64(2), doc.Entries[0].Value)
}

func TestAnnounceLeaderboardHandler(t *testing.T) {
	server := setupTestServer(t)

	// Three games so u1 clears the minimum games threshold.
	for _, g := range []*games.GameResult{completedGame("g1", "u1"), completedGame("g2", "u1"), completedGame("g3", "u1")} {
		req := pushRequest(t, "/game-completed", g)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	notif := server.Notifier.(*notifier.Mock)
	notif.Reset()

	target := fmt.Sprintf("/announce-leaderboard?category=goals&period=alltime&periodKey=%s", ranking.AllTimeKey)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest("GET", target, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, notif.SendLeaderboardCalls, 1)
	call := notif.SendLeaderboardCalls[0]
	assert.Equal(t, ranking.PeriodAllTime, call.Period)
	assert.Equal(t, ranking.CategoryGoals, call.Category)
	require.Len(t, call.Entries, 1)
	assert.Equal(t, "u1", call.Entries[0].UserID)

	t.Run("empty bucket still announces", func(t *testing.T) {
		notif.Reset()
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest("GET", "/announce-leaderboard?category=saves&period=week", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, notif.SendLeaderboardCalls, 1)
		assert.Empty(t, notif.SendLeaderboardCalls[0].Entries)
	})

	t.Run("rejects unknown period", func(t *testing.T) {
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest("GET", "/announce-leaderboard?period=nonsense", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestClearStoreHandler(t *testing.T) {
	server := setupTestServer(t)

	req := pushRequest(t, "/game-completed", completedGame("g1", "u1"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest("GET", "/clear", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	_, err := server.Games.GetResult("g1:u1")
	assert.ErrorIs(t, err, games.ErrNotFound)
	_, err = server.Seasons.Get("u1", "s1")
	assert.ErrorIs(t, err, season.ErrNotFound)
}

func TestStatsHandler(t *testing.T) {
	server := setupTestServer(t)
	server.Counters.Increment("events_processed")

	req := httptest.NewRequest("GET", "/stats", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var counters map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counters))
	assert.Equal(t, 1, counters["events_processed"])
}
