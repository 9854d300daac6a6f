package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealType enumerates the recommendation kinds.
type DealType string

const (
	DealTypeBundle   DealType = "bundle"
	DealTypeDiscount DealType = "discount"
	DealTypeIntro    DealType = "intro"
)

// Target segments.
const (
	SegmentHighValue = "high_value"
	SegmentAllStores = "all_stores"
	SegmentNewStores = "new_stores"
)

// DealRecommendation is a merchandising suggestion derived from a metric row.
// Exactly one of SuggestedMinQty and SuggestedDiscountPct is set.
type DealRecommendation struct {
	ID                   string           `db:"id" json:"id"`
	ProductID            string           `db:"product_id" json:"productId"`
	BusinessID           *string          `db:"business_id" json:"businessId,omitempty"`
	VerticalID           *string          `db:"vertical_id" json:"verticalId,omitempty"`
	StoreID              *string          `db:"store_id" json:"storeId,omitempty"`
	DealType             DealType         `db:"deal_type" json:"dealType"`
	TargetSegment        string           `db:"target_segment" json:"targetSegment"`
	SuggestedMinQty      *int             `db:"suggested_min_qty" json:"suggestedMinQty,omitempty"`
	SuggestedDiscountPct *decimal.Decimal `db:"suggested_discount_pct" json:"suggestedDiscountPct,omitempty"`
	Rationale            string           `db:"rationale" json:"rationale"`
	ExpiresAt            time.Time        `db:"expires_at" json:"expiresAt"`
	SnapshotDate         time.Time        `db:"snapshot_date" json:"snapshotDate"`
	CreatedAt            time.Time        `db:"created_at" json:"createdAt"`
}
