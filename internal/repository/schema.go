package repository

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS price_history (
	observation_date DATE PRIMARY KEY,
	close DOUBLE PRECISION NOT NULL CHECK (close > 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates the price history table if it does not exist yet
func (r *PriceRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}
