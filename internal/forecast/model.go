// Package forecast implements the parametric temperature model that turns a
// point forecast into an exceedance probability. The realized temperature is
// modeled as normally distributed around the point forecast with a fixed
// standard deviation.
package forecast

import (
	"fmt"
	"math"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// DefaultSigma is the fixed standard deviation of the temperature model, in °C.
const DefaultSigma = 2.5

// minProbability bounds results away from 0 and 1. math.Erf saturates for
// |z| beyond roughly 6, and the contract requires a value strictly inside
// the open interval.
const minProbability = 1e-12

// ExceedanceProbability returns P(temperature > thresholdC) when the realized
// temperature is N(forecastC, sigma²). The CDF is evaluated via the error
// function, accurate well past 1e-6.
func ExceedanceProbability(forecastC, thresholdC, sigma float64) (float64, error) {
	if math.IsNaN(sigma) || sigma <= 0 {
		return 0, fmt.Errorf("forecast: sigma must be positive, got %v: %w", sigma, domain.ErrInvalidParameter)
	}
	if math.IsNaN(forecastC) || math.IsInf(forecastC, 0) {
		return 0, fmt.Errorf("forecast: point forecast %v is not finite: %w", forecastC, domain.ErrInvalidParameter)
	}
	if math.IsNaN(thresholdC) || math.IsInf(thresholdC, 0) {
		return 0, fmt.Errorf("forecast: threshold %v is not finite: %w", thresholdC, domain.ErrInvalidParameter)
	}

	z := (thresholdC - forecastC) / sigma
	p := 1 - stdNormalCDF(z)

	if p < minProbability {
		p = minProbability
	}
	if p > 1-minProbability {
		p = 1 - minProbability
	}
	return p, nil
}

// stdNormalCDF is Φ, the standard normal cumulative distribution function.
func stdNormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
