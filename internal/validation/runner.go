package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// Announcer is the narrow notification surface the runner needs. Delivery
// failures never fail the run.
type Announcer interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Notification event names emitted by the runner.
const (
	EventDayComplete = "day_complete"
	EventVerdict     = "verdict"
)

// RunnerConfig holds the per-run parameters the runner needs beyond its
// collaborators.
type RunnerConfig struct {
	// ThresholdC is the exceedance threshold supplied for every matched
	// market. Threshold extraction from question text is upstream's job;
	// the aggregator treats it as opaque.
	ThresholdC float64
	// WinRate is the externally supplied realized-outcome metric passed to
	// the decision gate at finalize time.
	WinRate float64
	// DayInterval is the wait between observation days. Zero means no wait
	// (rehearsal runs).
	DayInterval time.Duration
}

// Runner drives a validation window day by day: list candidate markets,
// match each to a target city, pair it with a fresh forecast, and record the
// divergence. The loop is strictly sequential; the Run has exactly one
// writer. Store, cache, bus, archiver, and announcer are optional and may be
// nil; the sink is required.
type Runner struct {
	run       *Run
	forecasts domain.ForecastProvider
	markets   domain.MarketLister
	sink      domain.ObservationSink
	store     domain.ObservationStore
	cache     domain.ForecastCache
	bus       domain.ObservationBus
	archiver  domain.Archiver
	announcer Announcer
	cfg       RunnerConfig
	clock     clockwork.Clock
	logger    *slog.Logger

	status atomic.Pointer[domain.RunStatus]
}

// NewRunner wires a Runner around an unstarted Run. A nil clock defaults to
// the real clock.
func NewRunner(
	run *Run,
	forecasts domain.ForecastProvider,
	markets domain.MarketLister,
	sink domain.ObservationSink,
	store domain.ObservationStore,
	cache domain.ForecastCache,
	bus domain.ObservationBus,
	archiver domain.Archiver,
	announcer Announcer,
	cfg RunnerConfig,
	clk clockwork.Clock,
	logger *slog.Logger,
) *Runner {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	r := &Runner{
		run:       run,
		forecasts: forecasts,
		markets:   markets,
		sink:      sink,
		store:     store,
		cache:     cache,
		bus:       bus,
		archiver:  archiver,
		announcer: announcer,
		cfg:       cfg,
		clock:     clk,
		logger:    logger.With(slog.String("component", "runner"), slog.String("run_id", run.ID())),
	}
	r.publishStatus()
	return r
}

// Status returns the latest published snapshot of run progress. Safe to call
// from other goroutines while the run is in flight.
func (r *Runner) Status() domain.RunStatus {
	return *r.status.Load()
}

// Run executes the full observation window and returns the verdict. Context
// cancellation mid-window surfaces as ErrRunIncomplete: partial progress is
// reported, never silently discarded.
func (r *Runner) Run(ctx context.Context) (domain.VerdictReport, error) {
	windowDays := r.run.WindowDays()
	r.logger.InfoContext(ctx, "validation window starting",
		slog.Int("window_days", windowDays),
		slog.Duration("day_interval", r.cfg.DayInterval),
	)

	for r.run.CurrentDay() < windowDays {
		if err := ctx.Err(); err != nil {
			return domain.VerdictReport{}, r.aborted(ctx)
		}

		day, err := r.run.StartDay()
		if err != nil {
			return domain.VerdictReport{}, err
		}

		count, err := r.observeDay(ctx, day)
		if err != nil {
			return domain.VerdictReport{}, err
		}
		r.publishStatus()

		r.logger.InfoContext(ctx, "observation day complete",
			slog.Int("day", day),
			slog.Int("window_days", windowDays),
			slog.Int("opportunities", count),
		)
		r.announce(ctx, EventDayComplete,
			fmt.Sprintf("Day %d/%d complete", day, windowDays),
			fmt.Sprintf("%d opportunities recorded", count),
		)

		if day < windowDays {
			select {
			case <-ctx.Done():
				return domain.VerdictReport{}, r.aborted(ctx)
			case <-r.clock.After(r.cfg.DayInterval):
			}
		}
	}

	report, err := r.run.Finalize(r.cfg.WinRate)
	r.publishStatus()
	if err != nil {
		return domain.VerdictReport{}, err
	}

	r.finishUp(ctx, report)
	return report, nil
}

// observeDay collects observations for one day. Collaborator faults are
// ordinary absence of data; only sink failures and contract errors abort.
func (r *Runner) observeDay(ctx context.Context, day int) (int, error) {
	quotes, err := r.markets.ListWeatherMarkets(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "market listing unavailable",
			slog.Int("day", day),
			slog.String("error", err.Error()),
		)
		quotes = nil
	}

	count := 0
	for _, quote := range quotes {
		city, ok := r.run.MatchCity(quote.Question)
		if !ok {
			continue // out-of-universe market
		}

		est, ok := r.lookupForecast(ctx, city)
		if !ok {
			continue // no forecast today, skip the city
		}

		rec, err := r.run.RecordObservation(city, r.cfg.ThresholdC, est, quote)
		if err != nil {
			return count, fmt.Errorf("validation: record %s day %d: %w", city, day, err)
		}
		if err := r.mirror(ctx, rec); err != nil {
			return count, err
		}
		count++
		r.publishStatus()

		r.logger.DebugContext(ctx, "observation recorded",
			slog.String("city", city),
			slog.Float64("forecast_prob", rec.ForecastProb),
			slog.Float64("market_prob", rec.MarketProb),
			slog.Float64("edge", rec.Edge),
		)
	}
	return count, nil
}

// lookupForecast consults the cache before the provider. Transport faults
// reduce to absence here; the caller only sees "skip this city today".
func (r *Runner) lookupForecast(ctx context.Context, city string) (domain.ForecastEstimate, bool) {
	day := r.clock.Now().UTC().Truncate(24 * time.Hour)

	if r.cache != nil {
		if est, err := r.cache.Get(ctx, city, day, r.cfg.ThresholdC); err == nil {
			return est, true
		}
	}

	est, ok, err := r.forecasts.GetForecast(ctx, city, r.cfg.ThresholdC)
	if err != nil {
		r.logger.WarnContext(ctx, "forecast unavailable",
			slog.String("city", city),
			slog.String("error", err.Error()),
		)
		return domain.ForecastEstimate{}, false
	}
	if !ok {
		return domain.ForecastEstimate{}, false
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, city, day, r.cfg.ThresholdC, est); err != nil {
			r.logger.DebugContext(ctx, "forecast cache write failed",
				slog.String("city", city),
				slog.String("error", err.Error()),
			)
		}
	}
	return est, true
}

// mirror propagates a freshly appended record to the sink (fatal on failure,
// the flat file is the run's evidence), then best-effort to the store and bus.
func (r *Runner) mirror(ctx context.Context, rec domain.ObservationRecord) error {
	if err := r.sink.Append(ctx, rec); err != nil {
		return fmt.Errorf("validation: sink append: %w", err)
	}

	if r.store != nil {
		if err := r.store.Insert(ctx, r.run.ID(), rec); err != nil {
			r.logger.WarnContext(ctx, "observation store insert failed",
				slog.String("city", rec.City),
				slog.String("error", err.Error()),
			)
		}
	}

	if r.bus != nil {
		if payload, err := json.Marshal(rec); err == nil {
			if err := r.bus.Publish(ctx, domain.ChannelObservations, payload); err != nil {
				r.logger.DebugContext(ctx, "observation publish failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return nil
}

// finishUp archives and announces a successful verdict. Neither step can
// fail the run.
func (r *Runner) finishUp(ctx context.Context, report domain.VerdictReport) {
	if r.bus != nil {
		if payload, err := json.Marshal(report); err == nil {
			_ = r.bus.Publish(ctx, domain.ChannelVerdict, payload)
		}
	}

	if r.archiver != nil {
		if err := r.archiver.ArchiveRun(ctx, r.run.ID(), r.run.Records(), report); err != nil {
			r.logger.WarnContext(ctx, "run archive failed",
				slog.String("error", err.Error()),
			)
		}
	}

	outcome := "FAILED - no exploitable edge"
	if report.OverallPassed {
		outcome = "PASSED - proceed to build"
	}
	r.announce(ctx, EventVerdict,
		"Thesis validation "+outcome,
		fmt.Sprintf("avg edge %.1f%%, win rate %.1f%%, %.1f opportunities/day",
			report.AverageEdge*100, report.WinRate*100, report.OpportunitiesPerDay),
	)

	r.logger.InfoContext(ctx, "validation window finalized",
		slog.Bool("overall_passed", report.OverallPassed),
		slog.Float64("average_edge", report.AverageEdge),
		slog.Float64("opportunities_per_day", report.OpportunitiesPerDay),
		slog.Int("total_opportunities", report.TotalOpportunities),
	)
}

func (r *Runner) announce(ctx context.Context, event, title, message string) {
	if r.announcer == nil {
		return
	}
	if err := r.announcer.Notify(ctx, event, title, message); err != nil {
		r.logger.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Runner) aborted(ctx context.Context) error {
	return fmt.Errorf("validation: window aborted at day %d of %d: %w (%v)",
		r.run.CurrentDay(), r.run.WindowDays(), domain.ErrRunIncomplete, context.Cause(ctx))
}

func (r *Runner) publishStatus() {
	status := domain.RunStatus{
		RunID:        r.run.ID(),
		State:        r.run.State().String(),
		Day:          r.run.CurrentDay(),
		WindowDays:   r.run.WindowDays(),
		Observations: len(r.run.records),
	}
	r.status.Store(&status)
}
