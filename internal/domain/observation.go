// Package domain holds the core data types of the thesis-validation service:
// forecast estimates, market quotes, observation records, and the final
// verdict report. Types here are plain values with no behavior attached;
// the state machine that produces them lives in internal/validation.
package domain

import "time"

// ForecastEstimate is the probabilistic view of one (city, threshold) pair at
// observation time: the chance that the realized temperature exceeds the
// threshold, given the point forecast as the mean of a fixed-variance normal
// distribution.
type ForecastEstimate struct {
	// Probability is P(temperature > threshold), in [0,1].
	Probability float64 `json:"probability"`
	// MeanTempC is the point forecast used as the distribution mean, in °C.
	MeanTempC float64 `json:"mean_temp_c"`
	// ModelConfidence is the provider's confidence in the estimate, in [0,1].
	ModelConfidence float64 `json:"model_confidence"`
}

// MarketQuote is one candidate prediction-market listing: the raw question
// text and the market-implied probability of the Yes outcome.
type MarketQuote struct {
	ImpliedProbability float64 `json:"implied_probability"`
	Question           string  `json:"question"`
}

// ObservationRecord is the immutable unit of evidence produced once per
// matched (market, forecast) pair per day. Edge always equals
// |ForecastProb - MarketProb|; records are never mutated after creation.
type ObservationRecord struct {
	Date         time.Time `json:"date"`
	City         string    `json:"city"`
	ThresholdC   float64   `json:"threshold_c"`
	ForecastProb float64   `json:"forecast_prob"`
	MarketProb   float64   `json:"market_prob"`
	Edge         float64   `json:"edge"`
	Question     string    `json:"question"`
}

// VerdictReport is the decision gate's output: the aggregate statistics of a
// finalized run and the pass/fail sub-verdicts against the frozen go/no-go
// thresholds. Derived deterministically; never mutated once computed.
type VerdictReport struct {
	AverageEdge         float64 `json:"average_edge"`
	WinRate             float64 `json:"win_rate"`
	OpportunitiesPerDay float64 `json:"opportunities_per_day"`
	TotalOpportunities  int     `json:"total_opportunities"`
	EdgePassed          bool    `json:"edge_passed"`
	WinRatePassed       bool    `json:"win_rate_passed"`
	FrequencyPassed     bool    `json:"frequency_passed"`
	OverallPassed       bool    `json:"overall_passed"`
}

// RunStatus is an atomically published snapshot of an in-flight run, consumed
// by the monitoring server. The runner is the only writer.
type RunStatus struct {
	RunID        string `json:"run_id"`
	State        string `json:"state"`
	Day          int    `json:"day"`
	WindowDays   int    `json:"window_days"`
	Observations int    `json:"observations"`
}
