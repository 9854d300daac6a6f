package models

// Product is the read-only catalog entry the pipeline computes metrics for.
type Product struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"productName"`
	BrandID    *string `db:"brand_id" json:"brandId,omitempty"`
	BusinessID *string `db:"business_id" json:"businessId,omitempty"`
	VerticalID *string `db:"vertical_id" json:"verticalId,omitempty"`
	IsActive   bool    `db:"is_active" json:"isActive"`
}
