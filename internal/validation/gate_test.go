package validation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagavaishak/Celsius/internal/domain"
)

func recordsWithEdge(n int, edge float64) []domain.ObservationRecord {
	recs := make([]domain.ObservationRecord, n)
	for i := range recs {
		recs[i] = domain.ObservationRecord{
			Date:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i/3),
			City:         "London",
			ThresholdC:   15,
			ForecastProb: 0.5 + edge,
			MarketProb:   0.5,
			Edge:         edge,
			Question:     "London temp above 59F?",
		}
	}
	return recs
}

func TestEvaluate(t *testing.T) {
	t.Run("empty run", func(t *testing.T) {
		_, err := Evaluate(nil, 14, 0.70)
		assert.ErrorIs(t, err, domain.ErrEmptyRun)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		_, err := Evaluate(recordsWithEdge(3, 0.1), 0, 0.70)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)

		_, err = Evaluate(recordsWithEdge(3, 0.1), 14, 1.5)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)

		_, err = Evaluate(recordsWithEdge(3, 0.1), 14, math.NaN())
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	})

	t.Run("14 days x 3 opportunities at edge 0.10", func(t *testing.T) {
		report, err := Evaluate(recordsWithEdge(42, 0.10), 14, 0.70)
		require.NoError(t, err)

		assert.InDelta(t, 0.10, report.AverageEdge, 1e-9)
		assert.True(t, report.EdgePassed)
		// Frequency boundary is inclusive: 42/14 = 3.0 passes.
		assert.InDelta(t, 3.0, report.OpportunitiesPerDay, 1e-9)
		assert.True(t, report.FrequencyPassed)
		assert.True(t, report.WinRatePassed)
		assert.True(t, report.OverallPassed)

		// With the win rate below its floor, only the overall verdict flips.
		failing, err := Evaluate(recordsWithEdge(42, 0.10), 14, 0.60)
		require.NoError(t, err)
		assert.True(t, failing.EdgePassed)
		assert.True(t, failing.FrequencyPassed)
		assert.False(t, failing.WinRatePassed)
		assert.False(t, failing.OverallPassed)
	})

	t.Run("zero-opportunity days depress the frequency", func(t *testing.T) {
		// 9 active days x 5 records, 5 silent days: divide by the
		// configured window, not by active days.
		report, err := Evaluate(recordsWithEdge(45, 0.08), 14, 0.70)
		require.NoError(t, err)
		assert.InDelta(t, 45.0/14.0, report.OpportunitiesPerDay, 1e-9)
		assert.True(t, report.FrequencyPassed)
	})

	t.Run("average edge below threshold fails", func(t *testing.T) {
		report, err := Evaluate(recordsWithEdge(42, 0.049), 14, 0.70)
		require.NoError(t, err)
		assert.False(t, report.EdgePassed)
		assert.False(t, report.OverallPassed)
	})

	t.Run("no NaN fields ever", func(t *testing.T) {
		report, err := Evaluate(recordsWithEdge(1, 0.2), 14, 0.70)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(report.AverageEdge))
		assert.False(t, math.IsNaN(report.OpportunitiesPerDay))
		assert.False(t, math.IsNaN(report.WinRate))
	})
}

func TestPolicyThresholds(t *testing.T) {
	// The go/no-go criteria are frozen; a drift here is a policy change,
	// not a refactor.
	assert.Equal(t, 0.05, MinAverageEdge)
	assert.Equal(t, 0.65, MinWinRate)
	assert.Equal(t, 3.0, MinOpportunitiesPerDay)
}
