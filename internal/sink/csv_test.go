package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagavaishak/Celsius/internal/domain"
)

func testRecord(city string, edge float64) domain.ObservationRecord {
	return domain.ObservationRecord{
		Date:         time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		City:         city,
		ThresholdC:   15.0,
		ForecastProb: 0.9772,
		MarketProb:   0.5,
		Edge:         edge,
		Question:     "Will the temperature in " + city + " exceed 59°F?",
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	ctx := context.Background()

	s, err := NewCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, testRecord("London", 0.4772)))
	require.NoError(t, s.Append(ctx, testRecord("Chicago", 0.1)))
	require.NoError(t, s.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"2026-03-03", "London", "15.0", "0.977", "0.500", "0.477",
		"Will the temperature in London exceed 59°F?",
	}, rows[1])
	assert.Equal(t, "Chicago", rows[2][1])
	assert.Equal(t, "0.100", rows[2][5])
}

func TestCSVSinkReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	ctx := context.Background()

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, testRecord("London", 0.2)))
	require.NoError(t, s.Close())

	// Reopening never rewrites the header or loses rows.
	s, err = NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, testRecord("Chicago", 0.3)))
	require.NoError(t, s.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "London", rows[1][1])
	assert.Equal(t, "Chicago", rows[2][1])
}

func TestCSVSinkPrefixConsistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	ctx := context.Background()

	s, err := NewCSVSink(path)
	require.NoError(t, err)
	defer s.Close()

	// Each append is visible on disk before the call returns.
	for i, city := range []string{"London", "New York", "Chicago"} {
		require.NoError(t, s.Append(ctx, testRecord(city, 0.1)))
		rows := readAll(t, path)
		assert.Len(t, rows, i+2)
	}
}
