package resultstore

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/sweep"
)

var errBoom = errors.New("engine run failed: simulated")

func TestStore_InsertAndListPoints(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err, "Open")
	defer store.Close()

	runID := uuid.New()
	results := []sweep.PointResult{
		{
			TaskID:     uuid.New(),
			Parameters: sweep.Point{"atr_period": 14, "multiplier": 2},
			Metrics:    metrics.Summary{"sharpe": 1.5, "total_return": 0.2},
			Objective:  1.5,
			Success:    true,
		},
		{
			TaskID:     uuid.New(),
			Parameters: sweep.Point{"atr_period": 21, "multiplier": 3},
			Objective:  -1e308,
			Success:    false,
			Err:        errBoom,
		},
	}

	run := RunRecord{ID: runID, StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Objective: "sharpe", PointCount: len(results)}
	require.NoError(t, store.InsertRun(run, results), "InsertRun")

	got, err := store.GetRun(runID)
	require.NoError(t, err, "GetRun")
	assert.Equal(t, 2, got.PointCount)
	assert.Equal(t, "sharpe", got.Objective)

	points, err := store.ListPoints(runID)
	require.NoError(t, err, "ListPoints")
	require.Len(t, points, 2)

	// Ordered by objective descending: the successful point comes first.
	assert.True(t, points[0].Success, "best point should be the successful one")
	assert.Equal(t, float64(14), points[0].Parameters["atr_period"])
	assert.False(t, points[1].Success, "expected second point to be the failed one")
	require.Error(t, points[1].Err)
	assert.Equal(t, errBoom.Error(), points[1].Err.Error(), "expected failed point to preserve its error text")
	assert.Equal(t, 1.5, points[0].Metrics.Sharpe(), "expected sharpe to round-trip through json")
}
