package validation

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagavaishak/Celsius/internal/domain"
)

type fakeForecasts struct {
	estimates map[string]domain.ForecastEstimate
	failing   map[string]error
	calls     int
}

func (f *fakeForecasts) GetForecast(_ context.Context, city string, _ float64) (domain.ForecastEstimate, bool, error) {
	f.calls++
	if err, ok := f.failing[city]; ok {
		return domain.ForecastEstimate{}, false, err
	}
	est, ok := f.estimates[city]
	return est, ok, nil
}

type fakeMarkets struct {
	quotes []domain.MarketQuote
	err    error
}

func (f *fakeMarkets) ListWeatherMarkets(context.Context) ([]domain.MarketQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

type memSink struct {
	records []domain.ObservationRecord
	failErr error
	closed  bool
}

func (s *memSink) Append(_ context.Context, rec domain.ObservationRecord) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

func newTestRunner(t *testing.T, windowDays int, forecasts domain.ForecastProvider, markets domain.MarketLister, sink domain.ObservationSink) *Runner {
	t.Helper()
	run, err := NewRun(testCities, windowDays, nil)
	require.NoError(t, err)
	cfg := RunnerConfig{ThresholdC: 15.0, WinRate: 0.70, DayInterval: 0}
	return NewRunner(run, forecasts, markets, sink, nil, nil, nil, nil, nil, cfg, nil, slog.Default())
}

func TestRunnerFullWindow(t *testing.T) {
	forecasts := &fakeForecasts{estimates: map[string]domain.ForecastEstimate{
		"London":  {Probability: 0.9772, MeanTempC: 20, ModelConfidence: 0.95},
		"Chicago": {Probability: 0.30, MeanTempC: 12, ModelConfidence: 0.95},
	}}
	markets := &fakeMarkets{quotes: []domain.MarketQuote{
		{ImpliedProbability: 0.5, Question: "Will the temperature in London exceed 59°F?"},
		{ImpliedProbability: 0.4, Question: "Chicago temp above 59F on Tuesday?"},
		{ImpliedProbability: 0.6, Question: "Will it snow in Miami?"},         // no target city
		{ImpliedProbability: 0.5, Question: "New York temp above 59F today?"}, // forecast absent
	}}
	sink := &memSink{}

	runner := newTestRunner(t, 2, forecasts, markets, sink)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	// 2 matched observations per day over 2 days.
	assert.Equal(t, 4, report.TotalOpportunities)
	assert.InDelta(t, 2.0, report.OpportunitiesPerDay, 1e-9)
	assert.False(t, report.FrequencyPassed)
	assert.InDelta(t, (0.4772+0.10)/2, report.AverageEdge, 1e-9)
	assert.True(t, report.EdgePassed)
	assert.False(t, report.OverallPassed)

	// The sink mirrors the in-memory log exactly.
	assert.Equal(t, runner.run.Records(), sink.records)

	status := runner.Status()
	assert.Equal(t, "finalized", status.State)
	assert.Equal(t, 2, status.Day)
	assert.Equal(t, 4, status.Observations)
}

func TestRunnerCollaboratorAbsence(t *testing.T) {
	// Listing faults and forecast faults both reduce to absence: the run
	// completes and fails closed with ErrEmptyRun.
	forecasts := &fakeForecasts{failing: map[string]error{"London": errors.New("noaa 503")}}
	markets := &fakeMarkets{err: errors.New("gamma timeout")}
	sink := &memSink{}

	runner := newTestRunner(t, 1, forecasts, markets, sink)
	_, err := runner.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyRun)
	assert.Empty(t, sink.records)
}

func TestRunnerSinkFailureAborts(t *testing.T) {
	forecasts := &fakeForecasts{estimates: map[string]domain.ForecastEstimate{
		"London": {Probability: 0.8},
	}}
	markets := &fakeMarkets{quotes: []domain.MarketQuote{
		{ImpliedProbability: 0.5, Question: "London temp?"},
	}}
	sink := &memSink{failErr: errors.New("disk full")}

	runner := newTestRunner(t, 1, forecasts, markets, sink)
	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink append")
}

func TestRunnerCancellationIsIncomplete(t *testing.T) {
	forecasts := &fakeForecasts{}
	markets := &fakeMarkets{}
	sink := &memSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(t, 3, forecasts, markets, sink)
	_, err := runner.Run(ctx)
	assert.ErrorIs(t, err, domain.ErrRunIncomplete)
}
