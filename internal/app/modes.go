package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/nagavaishak/Celsius/internal/domain"
	"github.com/nagavaishak/Celsius/internal/platform/noaa"
	"github.com/nagavaishak/Celsius/internal/platform/polymarket"
	"github.com/nagavaishak/Celsius/internal/report"
	"github.com/nagavaishak/Celsius/internal/server"
	"github.com/nagavaishak/Celsius/internal/server/ws"
	"github.com/nagavaishak/Celsius/internal/sink"
	"github.com/nagavaishak/Celsius/internal/validation"
)

// ValidateMode executes a full observation window against live NOAA and
// Polymarket data, persists every observation, and returns the gate's
// verdict. If the monitor server is enabled it runs alongside the window and
// stops when the window ends.
func (a *App) ValidateMode(ctx context.Context, deps *Dependencies) (domain.VerdictReport, error) {
	vcfg := a.cfg.Validation

	coords := make(map[string]noaa.Coordinates, len(a.cfg.NOAA.Cities))
	for _, city := range a.cfg.NOAA.Cities {
		coords[city.Name] = noaa.Coordinates{Lat: city.Lat, Lon: city.Lon}
	}
	forecasts := noaa.NewClient(a.cfg.NOAA.BaseURL, a.cfg.NOAA.UserAgent, coords, vcfg.Sigma)
	markets := polymarket.NewGammaClient(a.cfg.Polymarket.GammaHost, vcfg.MarketLimit)

	csvSink, err := sink.NewCSVSink(a.cfg.CSV.Path)
	if err != nil {
		return domain.VerdictReport{}, err
	}
	defer func() {
		if cerr := csvSink.Close(); cerr != nil {
			a.logger.Warn("csv sink close failed", slog.String("error", cerr.Error()))
		}
	}()

	run, err := validation.NewRun(vcfg.TargetCities, vcfg.WindowDays, nil)
	if err != nil {
		return domain.VerdictReport{}, err
	}

	var announcer validation.Announcer
	if deps.Notifier != nil {
		announcer = deps.Notifier
	}

	runner := validation.NewRunner(
		run,
		forecasts,
		markets,
		csvSink,
		deps.Observations,
		deps.ForecastCache,
		deps.Bus,
		deps.Archiver,
		announcer,
		validation.RunnerConfig{
			ThresholdC:  vcfg.DefaultThresholdC,
			WinRate:     vcfg.AssumedWinRate,
			DayInterval: vcfg.DayInterval.Duration,
		},
		nil,
		a.logger,
	)

	// The gate's win rate is an assumption until resolved outcomes exist.
	a.logger.InfoContext(ctx, "using assumed win rate, results are not conclusive",
		slog.Float64("assumed_win_rate", vcfg.AssumedWinRate),
	)

	report.WriteHeader(os.Stdout, vcfg.TargetCities, vcfg.WindowDays)

	stopMonitor := a.startMonitor(ctx, deps, runner)
	verdict, runErr := runner.Run(ctx)
	stopMonitor()

	if runErr != nil {
		if errors.Is(runErr, domain.ErrEmptyRun) {
			report.WriteEmpty(os.Stdout)
		}
		return domain.VerdictReport{}, runErr
	}

	report.WriteVerdict(os.Stdout, verdict)
	return verdict, nil
}

// startMonitor launches the HTTP monitor and WebSocket hub when enabled. The
// returned stop function cancels them and waits for shutdown.
func (a *App) startMonitor(ctx context.Context, deps *Dependencies, runner *validation.Runner) func() {
	if !a.cfg.Server.Enabled {
		return func() {}
	}

	status := func() *domain.RunStatus {
		st := runner.Status()
		return &st
	}

	var hub *ws.Hub
	if deps.Bus != nil {
		hub = ws.NewHub(deps.Bus, status, a.logger)
	}
	srv := server.NewServer(server.Config{Port: a.cfg.Server.Port}, status, hub, a.logger)

	monCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(monCtx)
	g.Go(func() error { return srv.Run(gctx) })
	if hub != nil {
		g.Go(func() error { return hub.Run(gctx) })
	}

	return func() {
		cancel()
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("monitor shutdown error", slog.String("error", err.Error()))
		}
	}
}

// ReportMode re-runs the decision gate over the most recent persisted run and
// prints the verdict. It needs the database; there is nothing else to read
// from.
func (a *App) ReportMode(ctx context.Context, deps *Dependencies) (domain.VerdictReport, error) {
	if deps.Observations == nil {
		return domain.VerdictReport{}, fmt.Errorf("app: report mode requires the observation store")
	}

	runID, err := deps.Observations.LatestRunID(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VerdictReport{}, fmt.Errorf("app: no validation runs recorded yet: %w", err)
		}
		return domain.VerdictReport{}, err
	}

	records, err := deps.Observations.ListByRun(ctx, runID)
	if err != nil {
		return domain.VerdictReport{}, err
	}

	a.logger.InfoContext(ctx, "re-evaluating stored run",
		slog.String("run_id", runID),
		slog.Int("observations", len(records)),
	)

	verdict, err := validation.Evaluate(records, a.cfg.Validation.WindowDays, a.cfg.Validation.AssumedWinRate)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyRun) {
			report.WriteEmpty(os.Stdout)
		}
		return domain.VerdictReport{}, err
	}

	report.WriteVerdict(os.Stdout, verdict)
	return verdict, nil
}
