package validation

import (
	"fmt"
	"math"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// Frozen go/no-go policy. These encode the project's decision criteria and
// are deliberately not configurable: if any fails, the strategy has no
// exploitable edge and the build stops here.
const (
	// MinAverageEdge is the minimum mean forecast/market divergence.
	MinAverageEdge = 0.05
	// MinWinRate is the minimum realized-outcome win rate.
	MinWinRate = 0.65
	// MinOpportunitiesPerDay is the minimum observation frequency over the
	// configured window.
	MinOpportunitiesPerDay = 3.0
)

// Evaluate applies the decision gate to a completed record log. winRate must
// be supplied by the caller from realized outcomes; there is no principled
// estimator for it from divergence alone.
//
// Opportunities per day divides by the configured window length, not by the
// number of days that produced data, so zero-opportunity days depress the
// average.
func Evaluate(records []domain.ObservationRecord, windowDays int, winRate float64) (domain.VerdictReport, error) {
	if windowDays <= 0 {
		return domain.VerdictReport{}, fmt.Errorf("validation: window length must be positive, got %d: %w", windowDays, domain.ErrInvalidParameter)
	}
	if math.IsNaN(winRate) || winRate < 0 || winRate > 1 {
		return domain.VerdictReport{}, fmt.Errorf("validation: win rate %v outside [0,1]: %w", winRate, domain.ErrInvalidParameter)
	}
	if len(records) == 0 {
		return domain.VerdictReport{}, fmt.Errorf("validation: %d-day window produced no data: %w", windowDays, domain.ErrEmptyRun)
	}

	var sum float64
	for _, rec := range records {
		sum += rec.Edge
	}
	avgEdge := sum / float64(len(records))
	perDay := float64(len(records)) / float64(windowDays)

	report := domain.VerdictReport{
		AverageEdge:         avgEdge,
		WinRate:             winRate,
		OpportunitiesPerDay: perDay,
		TotalOpportunities:  len(records),
		EdgePassed:          avgEdge >= MinAverageEdge,
		WinRatePassed:       winRate >= MinWinRate,
		FrequencyPassed:     perDay >= MinOpportunitiesPerDay,
	}
	report.OverallPassed = report.EdgePassed && report.WinRatePassed && report.FrequencyPassed
	return report, nil
}
