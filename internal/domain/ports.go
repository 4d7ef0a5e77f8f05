package domain

import (
	"context"
	"io"
	"time"
)

// Bus channels published during a run.
const (
	ChannelObservations = "observations"
	ChannelVerdict      = "verdict"
)

// ForecastProvider fetches a probabilistic forecast for one city and
// threshold. The boolean result distinguishes "no forecast available" from a
// transport fault: ok=false with a nil error means the city should simply be
// skipped for the day. Callers reduce transport faults to absence as well;
// the core never sees them.
type ForecastProvider interface {
	GetForecast(ctx context.Context, city string, thresholdC float64) (ForecastEstimate, bool, error)
}

// MarketLister returns the candidate market listings for the current day, in
// the order the venue returned them. An empty slice is an ordinary outcome,
// never a fatal error.
type MarketLister interface {
	ListWeatherMarkets(ctx context.Context) ([]MarketQuote, error)
}

// ObservationSink is the append-only flat-file mirror of the in-memory
// record log. After Append returns, the sink content must be a
// prefix-consistent copy of the records appended so far.
type ObservationSink interface {
	Append(ctx context.Context, rec ObservationRecord) error
	Close() error
}

// ObservationStore persists observation records per run so that evidence
// survives process restarts and finished runs can be re-evaluated.
type ObservationStore interface {
	Insert(ctx context.Context, runID string, rec ObservationRecord) error
	ListByRun(ctx context.Context, runID string) ([]ObservationRecord, error)
	CountByRun(ctx context.Context, runID string) (int64, error)
	LatestRunID(ctx context.Context) (string, error)
}

// ForecastCache memoizes forecast estimates keyed by (city, day, threshold)
// so repeated matches within a day do not re-hit the weather service.
// Get returns ErrNotFound for missing or expired entries.
type ForecastCache interface {
	Get(ctx context.Context, city string, day time.Time, thresholdC float64) (ForecastEstimate, error)
	Set(ctx context.Context, city string, day time.Time, thresholdC float64, est ForecastEstimate) error
}

// ObservationBus is the pub/sub fabric that carries observation and verdict
// events from the runner to live observers (the monitoring hub).
type ObservationBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads a single object to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver uploads a finalized run's full evidence (records plus verdict) to
// cold storage as an immutable audit trail.
type Archiver interface {
	ArchiveRun(ctx context.Context, runID string, records []ObservationRecord, report VerdictReport) error
}
