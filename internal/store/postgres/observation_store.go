package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// ObservationStore implements domain.ObservationStore using PostgreSQL. Rows
// are append-only; the auto-increment id preserves the in-memory log order.
type ObservationStore struct {
	pool *pgxpool.Pool
}

// NewObservationStore creates an ObservationStore backed by the given pool.
func NewObservationStore(pool *pgxpool.Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Insert appends one observation record for the given run.
func (s *ObservationStore) Insert(ctx context.Context, runID string, rec domain.ObservationRecord) error {
	const query = `
		INSERT INTO observations (
			run_id, observed_on, city, threshold_c,
			forecast_prob, market_prob, edge, question
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		runID, rec.Date, rec.City, rec.ThresholdC,
		rec.ForecastProb, rec.MarketProb, rec.Edge, rec.Question,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert observation: %w", err)
	}
	return nil
}

// ListByRun returns all records of a run in append order.
func (s *ObservationStore) ListByRun(ctx context.Context, runID string) ([]domain.ObservationRecord, error) {
	const query = `
		SELECT observed_on, city, threshold_c, forecast_prob, market_prob, edge, question
		FROM observations
		WHERE run_id = $1
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list observations for run %s: %w", runID, err)
	}
	defer rows.Close()

	var recs []domain.ObservationRecord
	for rows.Next() {
		var rec domain.ObservationRecord
		if err := rows.Scan(
			&rec.Date, &rec.City, &rec.ThresholdC,
			&rec.ForecastProb, &rec.MarketProb, &rec.Edge, &rec.Question,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan observation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate observations: %w", err)
	}
	return recs, nil
}

// CountByRun returns the number of records stored for a run.
func (s *ObservationStore) CountByRun(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM observations WHERE run_id = $1", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count observations for run %s: %w", runID, err)
	}
	return count, nil
}

// LatestRunID returns the run that most recently appended a record, or
// domain.ErrNotFound when the table is empty.
func (s *ObservationStore) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.pool.QueryRow(ctx,
		"SELECT run_id FROM observations ORDER BY id DESC LIMIT 1").Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres: latest run id: %w", err)
	}
	return runID, nil
}
