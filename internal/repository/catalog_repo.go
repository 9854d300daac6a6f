package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// CatalogRepository reads products and stores. When a scope field is an
// empty string the filter is ignored.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProducts returns active products matching the business, vertical and
// product filters of scope.
func (r *CatalogRepository) ListProducts(ctx context.Context, scope models.Scope) ([]models.Product, error) {
	const q = `
        SELECT id, name, brand_id, business_id, vertical_id, is_active
        FROM products
        WHERE ($1 = '' OR business_id::text = $1)
        AND ($2 = '' OR vertical_id::text = $2)
        AND ($3 = '' OR id::text = $3)
        AND is_active = true
        ORDER BY id`

	products := make([]models.Product, 0)
	if err := r.db.SelectContext(ctx, &products, q, scope.BusinessID, scope.VerticalID, scope.ProductID); err != nil {
		return nil, err
	}
	return products, nil
}

// ListActiveStores returns active stores matching the store, business and
// vertical filters of scope.
func (r *CatalogRepository) ListActiveStores(ctx context.Context, scope models.Scope) ([]models.Store, error) {
	const q = `
        SELECT id, name, business_id, vertical_id, is_active
        FROM stores
        WHERE ($1 = '' OR id::text = $1)
        AND ($2 = '' OR business_id::text = $2)
        AND ($3 = '' OR vertical_id::text = $3)
        AND is_active = true
        ORDER BY id`

	stores := make([]models.Store, 0)
	if err := r.db.SelectContext(ctx, &stores, q, scope.StoreID, scope.BusinessID, scope.VerticalID); err != nil {
		return nil, err
	}
	return stores, nil
}
