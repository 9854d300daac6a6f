package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// StorePredictionRepository persists store/product purchase predictions.
type StorePredictionRepository struct {
	db *sqlx.DB
}

// NewStorePredictionRepository creates a new StorePredictionRepository.
func NewStorePredictionRepository(db *sqlx.DB) *StorePredictionRepository {
	return &StorePredictionRepository{db: db}
}

// Upsert inserts or overwrites the row keyed by (store_id, product_id, snapshot_date).
func (r *StorePredictionRepository) Upsert(ctx context.Context, p *models.StoreProductPrediction) error {
	const q = `
        INSERT INTO store_product_predictions (
            store_id, product_id, snapshot_date, buy_prob_7d, buy_prob_30d, last_order_at,
            days_since_last_order, avg_cycle_days, expected_quantity, is_primary_sku,
            is_experiment, tags, computed_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (store_id, product_id, snapshot_date) DO UPDATE SET
            buy_prob_7d = EXCLUDED.buy_prob_7d,
            buy_prob_30d = EXCLUDED.buy_prob_30d,
            last_order_at = EXCLUDED.last_order_at,
            days_since_last_order = EXCLUDED.days_since_last_order,
            avg_cycle_days = EXCLUDED.avg_cycle_days,
            expected_quantity = EXCLUDED.expected_quantity,
            is_primary_sku = EXCLUDED.is_primary_sku,
            is_experiment = EXCLUDED.is_experiment,
            tags = EXCLUDED.tags,
            computed_at = EXCLUDED.computed_at`

	_, err := r.db.ExecContext(ctx, q,
		p.StoreID,
		p.ProductID,
		dateParam(p.SnapshotDate),
		p.BuyProb7d,
		p.BuyProb30d,
		p.LastOrderAt,
		p.DaysSinceLastOrder,
		p.AvgCycleDays,
		p.ExpectedQuantity,
		p.IsPrimarySKU,
		p.IsExperiment,
		p.Tags,
		p.ComputedAt,
	)
	return err
}

// ListForStore returns up to limit predictions of storeID on date, most
// likely purchases first.
func (r *StorePredictionRepository) ListForStore(ctx context.Context, storeID string, date time.Time, limit int) ([]models.StorePredictionView, error) {
	const q = `
        SELECT sp.store_id, sp.product_id, sp.snapshot_date, sp.buy_prob_7d, sp.buy_prob_30d,
            sp.last_order_at, sp.days_since_last_order, sp.avg_cycle_days, sp.expected_quantity,
            sp.is_primary_sku, sp.is_experiment, sp.tags, sp.computed_at,
            COALESCE(p.name, '') AS product_name
        FROM store_product_predictions sp
        LEFT JOIN products p ON p.id = sp.product_id
        WHERE sp.store_id = $1 AND sp.snapshot_date = $2
        ORDER BY sp.buy_prob_7d DESC, sp.product_id
        LIMIT $3`

	rows := make([]models.StorePredictionView, 0)
	if err := r.db.SelectContext(ctx, &rows, q, storeID, dateParam(date), limit); err != nil {
		return nil, err
	}
	return rows, nil
}
