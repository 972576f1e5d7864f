package metrics

import (
	"testing"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) MetricsStore {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err, "Failed to initialize test database")
	t.Cleanup(teardown)
	return New(db)
}

func TestIncrementAndGetAll(t *testing.T) {
	store := setupTestStore(t)

	metrics, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, metrics)

	store.Increment("events_processed")
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 1, metrics["events_processed"])

	store.Increment("events_processed")
	store.Increment("slack_notifications_sent")
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 2, metrics["events_processed"])
	assert.Equal(t, 1, metrics["slack_notifications_sent"])
}
