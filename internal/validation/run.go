package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// State is the lifecycle state of a Run.
type State int

const (
	// StateCollecting accepts new days and observations.
	StateCollecting State = iota
	// StateFinalized is terminal: the verdict is computed and the log frozen.
	StateFinalized
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Run aggregates observation records over a fixed window of days. It is a
// two-state machine (Collecting -> Finalized) with a single writer; the
// append-only record log is owned exclusively by the Run for its lifetime.
type Run struct {
	id         string
	cities     []string
	windowDays int
	currentDay int
	state      State
	records    []domain.ObservationRecord
	clock      clockwork.Clock

	// Memoized finalize outcome, so repeated Finalize calls return
	// bit-identical results.
	report   domain.VerdictReport
	finalErr error
}

// NewRun creates a Run over the given target cities and window length.
// A nil clock defaults to the real clock; tests inject a fake.
func NewRun(cities []string, windowDays int, clk clockwork.Clock) (*Run, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("validation: window length must be positive, got %d: %w", windowDays, domain.ErrInvalidParameter)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Run{
		id:         uuid.NewString(),
		cities:     append([]string(nil), cities...),
		windowDays: windowDays,
		clock:      clk,
	}, nil
}

// ID returns the unique run identifier.
func (r *Run) ID() string { return r.id }

// WindowDays returns the configured window length.
func (r *Run) WindowDays() int { return r.windowDays }

// CurrentDay returns the number of days started so far, in [0, WindowDays].
func (r *Run) CurrentDay() int { return r.currentDay }

// State returns the current lifecycle state.
func (r *Run) State() State { return r.state }

// Records returns a copy of the record log in append order.
func (r *Run) Records() []domain.ObservationRecord {
	return append([]domain.ObservationRecord(nil), r.records...)
}

// StartDay advances the run to the next observation day. It fails with
// ErrWindowExhausted once every day of the window has been started.
func (r *Run) StartDay() (int, error) {
	if r.state != StateCollecting || r.currentDay >= r.windowDays {
		return 0, fmt.Errorf("validation: run %s at day %d of %d: %w",
			r.id, r.currentDay, r.windowDays, domain.ErrWindowExhausted)
	}
	r.currentDay++
	return r.currentDay, nil
}

// MatchCity associates a market question with a target city by
// case-insensitive substring match. The first matching city wins; a question
// matching no target city is out-of-universe, not an error.
func (r *Run) MatchCity(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, city := range r.cities {
		if strings.Contains(q, strings.ToLower(city)) {
			return city, true
		}
	}
	return "", false
}

// RecordObservation computes the edge for a matched (forecast, market) pair
// and appends exactly one record to the log, dated with the current day.
// Duplicate (city, threshold, day) pairs are legitimately recorded again if
// supplied again; de-duplication belongs upstream.
func (r *Run) RecordObservation(city string, thresholdC float64, f domain.ForecastEstimate, m domain.MarketQuote) (domain.ObservationRecord, error) {
	if r.state != StateCollecting {
		return domain.ObservationRecord{}, fmt.Errorf("validation: run %s is finalized: %w", r.id, domain.ErrWindowExhausted)
	}
	edge, err := Edge(f.Probability, m.ImpliedProbability)
	if err != nil {
		return domain.ObservationRecord{}, err
	}
	rec := domain.ObservationRecord{
		Date:         r.clock.Now().UTC().Truncate(24 * time.Hour),
		City:         city,
		ThresholdC:   thresholdC,
		ForecastProb: f.Probability,
		MarketProb:   m.ImpliedProbability,
		Edge:         edge,
		Question:     m.Question,
	}
	r.records = append(r.records, rec)
	return rec, nil
}

// Finalize transitions the run to its terminal state and computes the
// verdict. It fails with ErrRunIncomplete before the window has been fully
// observed. Once finalized the outcome is memoized: repeated calls return
// the identical report (or the identical ErrEmptyRun for a run that never
// produced data). winRate is the externally supplied realized-outcome
// metric; the gate never fabricates one.
func (r *Run) Finalize(winRate float64) (domain.VerdictReport, error) {
	if r.state == StateFinalized {
		return r.report, r.finalErr
	}
	if r.currentDay != r.windowDays {
		return domain.VerdictReport{}, fmt.Errorf("validation: run %s finalized at day %d of %d: %w",
			r.id, r.currentDay, r.windowDays, domain.ErrRunIncomplete)
	}
	r.state = StateFinalized
	r.report, r.finalErr = Evaluate(r.records, r.windowDays, winRate)
	return r.report, r.finalErr
}
