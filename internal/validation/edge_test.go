package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagavaishak/Celsius/internal/domain"
)

func TestEdge(t *testing.T) {
	t.Run("identical probabilities have zero edge", func(t *testing.T) {
		for _, p := range []float64{0, 0.25, 0.5, 0.9772, 1} {
			edge, err := Edge(p, p)
			require.NoError(t, err)
			assert.Zero(t, edge)
		}
	})

	t.Run("commutative", func(t *testing.T) {
		a, err := Edge(0.9772, 0.5)
		require.NoError(t, err)
		b, err := Edge(0.5, 0.9772)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.InDelta(t, 0.4772, a, 1e-9)
	})

	t.Run("maximum divergence", func(t *testing.T) {
		edge, err := Edge(0, 1)
		require.NoError(t, err)
		assert.Equal(t, 1.0, edge)
	})

	t.Run("out of range inputs", func(t *testing.T) {
		for _, tc := range [][2]float64{
			{-0.01, 0.5},
			{1.01, 0.5},
			{0.5, -1},
			{0.5, 2},
		} {
			_, err := Edge(tc[0], tc[1])
			assert.ErrorIs(t, err, domain.ErrInvalidParameter)
		}
	})
}
