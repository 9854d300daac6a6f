package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/analytics"
	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/models"
)

// MetricsService computes the daily revenue snapshot of every product.
type MetricsService struct {
	catalog CatalogReader
	orders  OrderHistoryReader
	metrics MetricStore
	runner  batchRunner
	clock   clock
}

// NewMetricsService constructs a MetricsService.
func NewMetricsService(catalog CatalogReader, orders OrderHistoryReader, metrics MetricStore, cfg config.PipelineConfig) *MetricsService {
	return &MetricsService{
		catalog: catalog,
		orders:  orders,
		metrics: metrics,
		runner:  newBatchRunner(cfg),
		clock:   newClock(cfg.Location),
	}
}

// ComputeProductMetrics aggregates the trailing 90 days of every product in
// scope and upserts one snapshot per product for today. A product whose
// history cannot be read or written is skipped and reported.
func (s *MetricsService) ComputeProductMetrics(ctx context.Context, scope models.Scope) (*RunReport, error) {
	now, snapshotDate := s.clock.snapshot()
	report := newRunReport(models.ActionComputeProductMetrics, scope, now, snapshotDate)

	products, err := s.catalog.ListProducts(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	since := now.Add(-analytics.Window90d)
	err = s.runner.run(ctx, report, ids, func(ctx context.Context, productID string) (int, error) {
		lines, err := s.orders.ProductLines(ctx, productID, since, now)
		if err != nil {
			log.Warn().Err(err).Str("product_id", productID).Msg("Failed to read product order history")
			return 0, fmt.Errorf("read order history: %w", err)
		}

		metric := analytics.BuildProductMetric(productID, lines, now, snapshotDate)
		if err := s.metrics.Upsert(ctx, &metric); err != nil {
			log.Error().Err(err).Str("product_id", productID).Msg("Failed to save product metric")
			return 0, fmt.Errorf("save metric: %w", err)
		}
		return 1, nil
	})
	report.FinishedAt = s.clock.now()
	return report, err
}
