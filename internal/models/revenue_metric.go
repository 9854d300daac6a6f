package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product tags written by the metrics computer.
const (
	TagHero      = "hero"
	TagGhost     = "ghost"
	TagRising    = "rising"
	TagDeclining = "declining"
	TagSlowMover = "slow_mover"
)

// ProductRevenueMetric is one product's daily snapshot.
// Natural key: (product_id, snapshot_date).
type ProductRevenueMetric struct {
	ProductID        string          `db:"product_id" json:"productId"`
	SnapshotDate     time.Time       `db:"snapshot_date" json:"snapshotDate"`
	Revenue30d       decimal.Decimal `db:"revenue_30d" json:"revenue30d"`
	Revenue90d       decimal.Decimal `db:"revenue_90d" json:"revenue90d"`
	UnitsSold30d     int             `db:"units_sold_30d" json:"unitsSold30d"`
	UnitsSold90d     int             `db:"units_sold_90d" json:"unitsSold90d"`
	AvgOrderQuantity float64         `db:"avg_order_quantity" json:"avgOrderQuantity"`
	UniqueStores30d  int             `db:"unique_stores_30d" json:"uniqueStores30d"`
	UniqueStores90d  int             `db:"unique_stores_90d" json:"uniqueStores90d"`
	Trend30d         float64         `db:"trend_30d" json:"trend30d"`
	Trend90d         float64         `db:"trend_90d" json:"trend90d"`
	HeroScore        float64         `db:"hero_score" json:"heroScore"`
	GhostScore       float64         `db:"ghost_score" json:"ghostScore"`
	Tags             pq.StringArray  `db:"tags" json:"tags"`
	ComputedAt       time.Time       `db:"computed_at" json:"computedAt"`
}

// HasTag reports whether tag is present.
func (m *ProductRevenueMetric) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ProductMetricView is a metric row joined to its product name and scope, as
// served to dashboards and consumed by the deal generator.
type ProductMetricView struct {
	ProductRevenueMetric
	ProductName string  `db:"product_name" json:"productName"`
	BusinessID  *string `db:"business_id" json:"businessId,omitempty"`
	VerticalID  *string `db:"vertical_id" json:"verticalId,omitempty"`
}
