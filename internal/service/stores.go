package service

import (
	"context"
	"time"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// OrderHistoryReader reads order lines of a time window.
type OrderHistoryReader interface {
	ProductLines(ctx context.Context, productID string, since, until time.Time) ([]models.OrderLine, error)
	StoreLines(ctx context.Context, storeID string, since, until time.Time) ([]models.OrderLine, error)
}

// CatalogReader lists the products and stores a run iterates.
type CatalogReader interface {
	ListProducts(ctx context.Context, scope models.Scope) ([]models.Product, error)
	ListActiveStores(ctx context.Context, scope models.Scope) ([]models.Store, error)
}

// StoreScoreReader returns the latest store score, or nil when none exists.
type StoreScoreReader interface {
	Latest(ctx context.Context, storeID string) (*models.StoreRevenueScore, error)
}

// MetricStore persists and reads product metric snapshots.
type MetricStore interface {
	Upsert(ctx context.Context, m *models.ProductRevenueMetric) error
	ListForDate(ctx context.Context, scope models.Scope, date time.Time) ([]models.ProductMetricView, error)
	TopHeroes(ctx context.Context, scope models.Scope, date time.Time, floor float64, limit int) ([]models.ProductMetricView, error)
	TopGhosts(ctx context.Context, scope models.Scope, date time.Time, floor float64, limit int) ([]models.ProductMetricView, error)
}

// PredictionStore persists and reads store-product predictions.
type PredictionStore interface {
	Upsert(ctx context.Context, p *models.StoreProductPrediction) error
	ListForStore(ctx context.Context, storeID string, date time.Time, limit int) ([]models.StorePredictionView, error)
}

// DealStore persists and reads deal recommendations.
type DealStore interface {
	Insert(ctx context.Context, d *models.DealRecommendation) error
	Supersede(ctx context.Context, d *models.DealRecommendation) error
	ListActive(ctx context.Context, scope models.Scope, date, now time.Time, limit int) ([]models.DealRecommendation, error)
}

// RunLog stores run reports.
type RunLog interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	ListRecent(ctx context.Context, action string, limit int) ([]models.PipelineRun, error)
}

// SnapshotCache caches query results of a snapshot date.
type SnapshotCache interface {
	Load(ctx context.Context, key string, dest interface{}) (bool, error)
	Store(ctx context.Context, key string, value interface{}, snapshotDate time.Time) error
	InvalidateDate(ctx context.Context, snapshotDate time.Time) error
}
