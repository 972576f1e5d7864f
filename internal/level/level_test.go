package level_test

import (
	"testing"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableIsStrictlyIncreasing(t *testing.T) {
	tbl := level.Table()
	require.NotEmpty(t, tbl)
	assert.Equal(t, 0, tbl[0].Level)
	assert.Equal(t, int64(0), tbl[0].XPRequired)

	for i := 1; i < len(tbl); i++ {
		assert.Greater(t, tbl[i].XPRequired, tbl[i-1].XPRequired, "thresholds must strictly increase")
		assert.Equal(t, tbl[i-1].Level+1, tbl[i].Level, "levels must be contiguous")
	}
}

func TestForXP_ExactThresholds(t *testing.T) {
	// Landing exactly on a threshold yields that level.
	for _, def := range level.Table() {
		got := level.ForXP(def.XPRequired)
		assert.Equal(t, def.Level, got.Level, "xp=%d", def.XPRequired)
	}
}

func TestForXP_BetweenThresholds(t *testing.T) {
	tbl := level.Table()
	assert.Equal(t, 0, level.ForXP(tbl[1].XPRequired-1).Level)
	assert.Equal(t, 1, level.ForXP(tbl[1].XPRequired+1).Level)
	assert.Equal(t, level.MaxLevel(), level.ForXP(tbl[len(tbl)-1].XPRequired+1_000_000).Level)
}

func TestForXP_NegativeXP(t *testing.T) {
	assert.Equal(t, 0, level.ForXP(-50).Level)
}

func TestProgress(t *testing.T) {
	tbl := level.Table()

	t.Run("mid level", func(t *testing.T) {
		xp := tbl[2].XPRequired + 100
		into, span := level.Progress(xp)
		assert.Equal(t, int64(100), into)
		assert.Equal(t, tbl[3].XPRequired-tbl[2].XPRequired, span)
		assert.Greater(t, span, int64(0))
	})

	t.Run("fresh level start", func(t *testing.T) {
		into, span := level.Progress(tbl[4].XPRequired)
		assert.Equal(t, int64(0), into)
		assert.Greater(t, span, int64(0))
	})

	t.Run("maxed out", func(t *testing.T) {
		into, span := level.Progress(tbl[len(tbl)-1].XPRequired + 12345)
		assert.Equal(t, int64(0), into)
		assert.Equal(t, int64(0), span)
		assert.Equal(t, 100.0, level.ProgressPercent(tbl[len(tbl)-1].XPRequired))
	})

	t.Run("denominator is never negative", func(t *testing.T) {
		for xp := int64(0); xp < 100_000; xp += 777 {
			_, span := level.Progress(xp)
			assert.GreaterOrEqual(t, span, int64(0))
		}
	})
}

func TestProgressPercent(t *testing.T) {
	tbl := level.Table()
	halfway := tbl[1].XPRequired + (tbl[2].XPRequired-tbl[1].XPRequired)/2
	assert.InDelta(t, 50.0, level.ProgressPercent(halfway), 1.0)
}
