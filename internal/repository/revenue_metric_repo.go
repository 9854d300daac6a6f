package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// RevenueMetricRepository persists product revenue snapshots.
type RevenueMetricRepository struct {
	db *sqlx.DB
}

// NewRevenueMetricRepository creates a new RevenueMetricRepository.
func NewRevenueMetricRepository(db *sqlx.DB) *RevenueMetricRepository {
	return &RevenueMetricRepository{db: db}
}

// Upsert inserts or overwrites the snapshot keyed by (product_id, snapshot_date).
func (r *RevenueMetricRepository) Upsert(ctx context.Context, m *models.ProductRevenueMetric) error {
	const q = `
        INSERT INTO product_revenue_metrics (
            product_id, snapshot_date, revenue_30d, revenue_90d, units_sold_30d, units_sold_90d,
            avg_order_quantity, unique_stores_30d, unique_stores_90d, trend_30d, trend_90d,
            hero_score, ghost_score, tags, computed_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (product_id, snapshot_date) DO UPDATE SET
            revenue_30d = EXCLUDED.revenue_30d,
            revenue_90d = EXCLUDED.revenue_90d,
            units_sold_30d = EXCLUDED.units_sold_30d,
            units_sold_90d = EXCLUDED.units_sold_90d,
            avg_order_quantity = EXCLUDED.avg_order_quantity,
            unique_stores_30d = EXCLUDED.unique_stores_30d,
            unique_stores_90d = EXCLUDED.unique_stores_90d,
            trend_30d = EXCLUDED.trend_30d,
            trend_90d = EXCLUDED.trend_90d,
            hero_score = EXCLUDED.hero_score,
            ghost_score = EXCLUDED.ghost_score,
            tags = EXCLUDED.tags,
            computed_at = EXCLUDED.computed_at`

	_, err := r.db.ExecContext(ctx, q,
		m.ProductID,
		dateParam(m.SnapshotDate),
		m.Revenue30d,
		m.Revenue90d,
		m.UnitsSold30d,
		m.UnitsSold90d,
		m.AvgOrderQuantity,
		m.UniqueStores30d,
		m.UniqueStores90d,
		m.Trend30d,
		m.Trend90d,
		m.HeroScore,
		m.GhostScore,
		m.Tags,
		m.ComputedAt,
	)
	return err
}

const metricViewSelect = `
        SELECT m.product_id, m.snapshot_date, m.revenue_30d, m.revenue_90d, m.units_sold_30d,
            m.units_sold_90d, m.avg_order_quantity, m.unique_stores_30d, m.unique_stores_90d,
            m.trend_30d, m.trend_90d, m.hero_score, m.ghost_score, m.tags, m.computed_at,
            p.name AS product_name, p.business_id, p.vertical_id
        FROM product_revenue_metrics m
        JOIN products p ON p.id = m.product_id
        WHERE m.snapshot_date = $1
        AND ($2 = '' OR p.business_id::text = $2)
        AND ($3 = '' OR p.vertical_id::text = $3)
        AND ($4 = '' OR p.id::text = $4)`

// ListForDate returns every snapshot of date within scope.
func (r *RevenueMetricRepository) ListForDate(ctx context.Context, scope models.Scope, date time.Time) ([]models.ProductMetricView, error) {
	q := metricViewSelect + `
        ORDER BY m.product_id`

	rows := make([]models.ProductMetricView, 0)
	if err := r.db.SelectContext(ctx, &rows, q, dateParam(date), scope.BusinessID, scope.VerticalID, scope.ProductID); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopHeroes returns up to limit snapshots of date with hero_score >= floor,
// strongest first.
func (r *RevenueMetricRepository) TopHeroes(ctx context.Context, scope models.Scope, date time.Time, floor float64, limit int) ([]models.ProductMetricView, error) {
	q := metricViewSelect + `
        AND m.hero_score >= $5
        ORDER BY m.hero_score DESC, m.product_id
        LIMIT $6`

	rows := make([]models.ProductMetricView, 0)
	if err := r.db.SelectContext(ctx, &rows, q, dateParam(date), scope.BusinessID, scope.VerticalID, scope.ProductID, floor, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopGhosts returns up to limit snapshots of date with ghost_score >= floor or
// tagged slow_mover, most stagnant first.
func (r *RevenueMetricRepository) TopGhosts(ctx context.Context, scope models.Scope, date time.Time, floor float64, limit int) ([]models.ProductMetricView, error) {
	q := metricViewSelect + `
        AND (m.ghost_score >= $5 OR $7 = ANY(m.tags))
        ORDER BY m.ghost_score DESC, m.product_id
        LIMIT $6`

	rows := make([]models.ProductMetricView, 0)
	if err := r.db.SelectContext(ctx, &rows, q, dateParam(date), scope.BusinessID, scope.VerticalID, scope.ProductID, floor, limit, models.TagSlowMover); err != nil {
		return nil, err
	}
	return rows, nil
}
