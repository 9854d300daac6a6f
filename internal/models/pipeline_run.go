package models

import (
	"time"

	"github.com/lib/pq"
)

// Pipeline actions accepted by the dispatcher.
const (
	ActionComputeProductMetrics       = "compute_product_metrics"
	ActionComputeStorePredictions     = "compute_store_predictions"
	ActionGenerateDealRecommendations = "generate_deal_recommendations"
	ActionGetStorePredictions         = "get_store_predictions"
	ActionGetHeroGhostSKUs            = "get_hero_ghost_skus"
)

// PipelineRun records the outcome of one batch action for diagnostics.
type PipelineRun struct {
	ID           string         `db:"id" json:"id"`
	Action       string         `db:"action" json:"action"`
	BusinessID   *string        `db:"business_id" json:"businessId,omitempty"`
	VerticalID   *string        `db:"vertical_id" json:"verticalId,omitempty"`
	StoreID      *string        `db:"store_id" json:"storeId,omitempty"`
	ProductID    *string        `db:"product_id" json:"productId,omitempty"`
	SnapshotDate time.Time      `db:"snapshot_date" json:"snapshotDate"`
	Processed    int            `db:"processed" json:"processed"`
	Failed       int            `db:"failed" json:"failed"`
	Failures     pq.StringArray `db:"failures" json:"failures"`
	StartedAt    time.Time      `db:"started_at" json:"startedAt"`
	FinishedAt   time.Time      `db:"finished_at" json:"finishedAt"`
}
