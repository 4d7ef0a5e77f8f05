// Package sink persists observation records to an append-only CSV file, the
// flat-file evidence trail of a validation run.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/nagavaishak/Celsius/internal/domain"
)

var csvHeader = []string{"date", "city", "threshold", "forecast_prob", "market_price", "edge", "question"}

// CSVSink implements domain.ObservationSink. Every append is flushed and
// synced so the file is a prefix-consistent mirror of the in-memory log even
// across a crash. The sink has a single writer, like the run it mirrors.
type CSVSink struct {
	file *os.File
	w    *csv.Writer
}

// NewCSVSink opens (or creates) the CSV file at path in append mode and
// writes the header when the file is empty.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink: open %s: %w", path, err)
	}

	s := &CSVSink{file: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sink: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := s.writeRow(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return s, nil
}

// Append writes one record as a CSV row. Probabilities and edge are
// formatted to 3 decimal places.
func (s *CSVSink) Append(_ context.Context, rec domain.ObservationRecord) error {
	row := []string{
		rec.Date.Format("2006-01-02"),
		rec.City,
		strconv.FormatFloat(rec.ThresholdC, 'f', 1, 64),
		fmt.Sprintf("%.3f", rec.ForecastProb),
		fmt.Sprintf("%.3f", rec.MarketProb),
		fmt.Sprintf("%.3f", rec.Edge),
		rec.Question,
	}
	return s.writeRow(row)
}

// Close flushes and closes the underlying file.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("sink: flush: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("sink: close: %w", err)
	}
	return nil
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("sink: write row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("sink: flush: %w", err)
	}
	// Sync so the on-disk file never lags the in-memory log.
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sink: sync: %w", err)
	}
	return nil
}
