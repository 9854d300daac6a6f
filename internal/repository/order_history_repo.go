package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// OrderHistoryRepository is the read-only view over orders and order items.
type OrderHistoryRepository struct {
	db *sqlx.DB
}

// NewOrderHistoryRepository creates a new OrderHistoryRepository.
func NewOrderHistoryRepository(db *sqlx.DB) *OrderHistoryRepository {
	return &OrderHistoryRepository{db: db}
}

const orderLineColumns = `
        oi.order_id, o.store_id, oi.product_id, oi.quantity, oi.unit_price, o.ordered_at
    FROM order_items oi
    JOIN orders o ON o.id = oi.order_id`

// ProductLines returns every line of productID ordered in [since, until].
func (r *OrderHistoryRepository) ProductLines(ctx context.Context, productID string, since, until time.Time) ([]models.OrderLine, error) {
	q := `SELECT` + orderLineColumns + `
    WHERE oi.product_id = $1 AND o.ordered_at >= $2 AND o.ordered_at <= $3
    ORDER BY o.ordered_at`

	lines := make([]models.OrderLine, 0)
	if err := r.db.SelectContext(ctx, &lines, q, productID, since, until); err != nil {
		return nil, err
	}
	return lines, nil
}

// StoreLines returns every line ordered by storeID in [since, until].
func (r *OrderHistoryRepository) StoreLines(ctx context.Context, storeID string, since, until time.Time) ([]models.OrderLine, error) {
	q := `SELECT` + orderLineColumns + `
    WHERE o.store_id = $1 AND o.ordered_at >= $2 AND o.ordered_at <= $3
    ORDER BY o.ordered_at`

	lines := make([]models.OrderLine, 0)
	if err := r.db.SelectContext(ctx, &lines, q, storeID, since, until); err != nil {
		return nil, err
	}
	return lines, nil
}
