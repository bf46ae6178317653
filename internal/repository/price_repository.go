package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

// PriceRepository handles database operations for the cached price history
type PriceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPriceRepository creates a new price history repository
func NewPriceRepository(db *sqlx.DB, logger *zap.Logger) *PriceRepository {
	return &PriceRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertObservations bulk-inserts observations, replacing closes for dates
// already cached
func (r *PriceRepository) UpsertObservations(ctx context.Context, observations []model.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	dates := make([]time.Time, len(observations))
	closes := make([]float64, len(observations))
	for i, obs := range observations {
		dates[i] = obs.Date
		closes[i] = obs.Close
	}

	query := `
		INSERT INTO price_history (observation_date, close, updated_at)
		SELECT d, c, CURRENT_TIMESTAMP
		FROM unnest($1::date[], $2::float8[]) AS t(d, c)
		ON CONFLICT (observation_date)
		DO UPDATE SET
			close = EXCLUDED.close,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, pq.Array(dates), pq.Array(closes))
	if err != nil {
		r.logger.Error("Failed to upsert observations",
			zap.Error(err),
			zap.Int("count", len(observations)))
		return err
	}

	r.logger.Debug("Cached observations", zap.Int("count", len(observations)))
	return nil
}

// GetObservations retrieves cached observations ordered by date, optionally
// restricted to an inclusive date range
func (r *PriceRepository) GetObservations(
	ctx context.Context,
	startDate *time.Time,
	endDate *time.Time,
) ([]model.Observation, error) {
	query := `
		SELECT observation_date, close
		FROM price_history
		WHERE ($1::date IS NULL OR observation_date >= $1)
		  AND ($2::date IS NULL OR observation_date <= $2)
		ORDER BY observation_date
	`

	var observations []model.Observation
	err := r.db.SelectContext(ctx, &observations, query, startDate, endDate)
	if err != nil {
		r.logger.Error("Failed to get observations", zap.Error(err))
		return nil, err
	}

	return observations, nil
}

// GetDataRange returns the first and last cached observation dates
func (r *PriceRepository) GetDataRange(ctx context.Context) (*time.Time, *time.Time, error) {
	query := `
		SELECT MIN(observation_date) AS start_date, MAX(observation_date) AS end_date
		FROM price_history
	`

	var row struct {
		StartDate *time.Time `db:"start_date"`
		EndDate   *time.Time `db:"end_date"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		r.logger.Error("Failed to get data range", zap.Error(err))
		return nil, nil, err
	}

	return row.StartDate, row.EndDate, nil
}

// LastRefreshed returns the most recent cache write time, or nil when the
// cache is empty
func (r *PriceRepository) LastRefreshed(ctx context.Context) (*time.Time, error) {
	query := `SELECT MAX(updated_at) FROM price_history`

	var refreshed sql.NullTime
	if err := r.db.GetContext(ctx, &refreshed, query); err != nil {
		r.logger.Error("Failed to get cache freshness", zap.Error(err))
		return nil, err
	}

	if !refreshed.Valid {
		return nil, nil
	}
	return &refreshed.Time, nil
}

// DeleteObservations removes the given observation dates from the cache
func (r *PriceRepository) DeleteObservations(ctx context.Context, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	query := `DELETE FROM price_history WHERE observation_date = ANY($1::date[])`

	result, err := r.db.ExecContext(ctx, query, pq.Array(dates))
	if err != nil {
		r.logger.Error("Failed to delete observations", zap.Error(err))
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
