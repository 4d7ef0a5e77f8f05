// Package validation implements the edge-estimation core: the divergence
// calculator, the day-by-day run aggregator, the decision gate, and the
// runner that drives a full observation window.
package validation

import (
	"fmt"
	"math"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// Edge returns the absolute divergence between a forecast-derived probability
// and a market-implied probability for the same event. It is pure and
// commutative. Inputs outside [0,1] are a caller contract violation.
func Edge(pForecast, pMarket float64) (float64, error) {
	if !isProbability(pForecast) {
		return 0, fmt.Errorf("validation: forecast probability %v outside [0,1]: %w", pForecast, domain.ErrInvalidParameter)
	}
	if !isProbability(pMarket) {
		return 0, fmt.Errorf("validation: market probability %v outside [0,1]: %w", pMarket, domain.ErrInvalidParameter)
	}
	return math.Abs(pForecast - pMarket), nil
}

// isProbability also rejects NaN, which fails both comparisons.
func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
