package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// DealRepository persists deal recommendations.
type DealRepository struct {
	db *sqlx.DB
}

// NewDealRepository creates a new DealRepository.
func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

const insertDealQuery = `
        INSERT INTO deal_recommendations (
            id, product_id, business_id, vertical_id, store_id, deal_type, target_segment,
            suggested_min_qty, suggested_discount_pct, rationale, expires_at, snapshot_date, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func dealArgs(d *models.DealRecommendation) []interface{} {
	return []interface{}{
		d.ID,
		d.ProductID,
		d.BusinessID,
		d.VerticalID,
		d.StoreID,
		string(d.DealType),
		d.TargetSegment,
		d.SuggestedMinQty,
		d.SuggestedDiscountPct,
		d.Rationale,
		d.ExpiresAt,
		dateParam(d.SnapshotDate),
		d.CreatedAt,
	}
}

// Insert appends a recommendation.
func (r *DealRepository) Insert(ctx context.Context, d *models.DealRecommendation) error {
	_, err := r.db.ExecContext(ctx, insertDealQuery, dealArgs(d)...)
	return err
}

// Supersede replaces any recommendation of the same product, deal type and
// snapshot date with d in a single transaction.
func (r *DealRepository) Supersede(ctx context.Context, d *models.DealRecommendation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin supersede: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const del = `
        DELETE FROM deal_recommendations
        WHERE product_id = $1 AND deal_type = $2 AND snapshot_date = $3`
	if _, err := tx.ExecContext(ctx, del, d.ProductID, string(d.DealType), dateParam(d.SnapshotDate)); err != nil {
		return fmt.Errorf("delete superseded deals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertDealQuery, dealArgs(d)...); err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}
	return tx.Commit()
}

// ListActive returns unexpired recommendations of date within scope, newest first.
func (r *DealRepository) ListActive(ctx context.Context, scope models.Scope, date, now time.Time, limit int) ([]models.DealRecommendation, error) {
	const q = `
        SELECT id, product_id, business_id, vertical_id, store_id, deal_type, target_segment,
            suggested_min_qty, suggested_discount_pct, rationale, expires_at, snapshot_date, created_at
        FROM deal_recommendations
        WHERE snapshot_date = $1
        AND expires_at > $2
        AND ($3 = '' OR business_id::text = $3)
        AND ($4 = '' OR vertical_id::text = $4)
        AND ($5 = '' OR product_id::text = $5)
        ORDER BY created_at DESC, id
        LIMIT $6`

	deals := make([]models.DealRecommendation, 0)
	if err := r.db.SelectContext(ctx, &deals, q, dateParam(date), now, scope.BusinessID, scope.VerticalID, scope.ProductID, limit); err != nil {
		return nil, err
	}
	return deals, nil
}
