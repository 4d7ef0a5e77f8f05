package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagavaishak/Celsius/internal/domain"
)

func TestExceedanceProbability(t *testing.T) {
	t.Run("forecast 20C threshold 15C sigma 2.5", func(t *testing.T) {
		// z = (15-20)/2.5 = -2.0, so P(exceed) = Phi(2.0) ~= 0.9772.
		p, err := ExceedanceProbability(20, 15, 2.5)
		require.NoError(t, err)
		assert.InDelta(t, 0.97725, p, 1e-4)
	})

	t.Run("threshold at the mean is a coin flip", func(t *testing.T) {
		p, err := ExceedanceProbability(15, 15, DefaultSigma)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, p, 1e-9)
	})

	t.Run("monotonically decreasing in threshold", func(t *testing.T) {
		prev := 1.0
		for thr := 5.0; thr <= 32.0; thr += 1.5 {
			p, err := ExceedanceProbability(18, thr, DefaultSigma)
			require.NoError(t, err)
			assert.Less(t, p, prev, "threshold %v", thr)
			prev = p
		}
	})

	t.Run("strictly inside the open interval", func(t *testing.T) {
		for _, tc := range []struct{ forecast, threshold float64 }{
			{20, -100},
			{20, 100},
			{-40, 50},
			{50, -40},
		} {
			p, err := ExceedanceProbability(tc.forecast, tc.threshold, DefaultSigma)
			require.NoError(t, err)
			assert.Greater(t, p, 0.0)
			assert.Less(t, p, 1.0)
		}
	})

	t.Run("invalid sigma", func(t *testing.T) {
		for _, sigma := range []float64{0, -1} {
			_, err := ExceedanceProbability(20, 15, sigma)
			assert.ErrorIs(t, err, domain.ErrInvalidParameter)
		}
	})
}
