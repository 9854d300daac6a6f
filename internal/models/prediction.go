package models

import (
	"time"

	"github.com/lib/pq"
)

// Prediction tags.
const (
	TagRestock = "restock"
	TagPrimary = "primary"
)

// StoreProductPrediction is a store/product purchase-likelihood snapshot.
// Natural key: (store_id, product_id, snapshot_date).
type StoreProductPrediction struct {
	StoreID            string         `db:"store_id" json:"storeId"`
	ProductID          string         `db:"product_id" json:"productId"`
	SnapshotDate       time.Time      `db:"snapshot_date" json:"snapshotDate"`
	BuyProb7d          float64        `db:"buy_prob_7d" json:"buyProb7d"`
	BuyProb30d         float64        `db:"buy_prob_30d" json:"buyProb30d"`
	LastOrderAt        time.Time      `db:"last_order_at" json:"lastOrderAt"`
	DaysSinceLastOrder int            `db:"days_since_last_order" json:"daysSinceLastOrder"`
	AvgCycleDays       float64        `db:"avg_cycle_days" json:"avgCycleDays"`
	ExpectedQuantity   float64        `db:"expected_quantity" json:"expectedQuantity"`
	IsPrimarySKU       bool           `db:"is_primary_sku" json:"isPrimarySku"`
	IsExperiment       bool           `db:"is_experiment" json:"isExperiment"`
	Tags               pq.StringArray `db:"tags" json:"tags"`
	ComputedAt         time.Time      `db:"computed_at" json:"computedAt"`
}

// StorePredictionView adds the product name for dashboards.
type StorePredictionView struct {
	StoreProductPrediction
	ProductName string `db:"product_name" json:"productName"`
}
