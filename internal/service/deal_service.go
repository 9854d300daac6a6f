package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/analytics"
	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/models"
)

// DealService turns today's product metrics into deal recommendations.
type DealService struct {
	metrics MetricStore
	deals   DealStore
	mode    config.DealsMode
	runner  batchRunner
	clock   clock
}

// NewDealService constructs a DealService.
func NewDealService(metrics MetricStore, deals DealStore, cfg config.PipelineConfig) *DealService {
	mode := cfg.DealsMode
	if mode == "" {
		mode = config.DealsModeSupersede
	}
	return &DealService{
		metrics: metrics,
		deals:   deals,
		mode:    mode,
		runner:  newBatchRunner(cfg),
		clock:   newClock(cfg.Location),
	}
}

// GenerateDealRecommendations evaluates the bundle, discount and intro rules
// against every metric snapshot of today in scope. In supersede mode a rerun
// replaces the day's rows of the same product and deal type; in append mode
// every run adds rows. Report.Written holds the number of deals created.
func (s *DealService) GenerateDealRecommendations(ctx context.Context, scope models.Scope) (*RunReport, error) {
	now, snapshotDate := s.clock.snapshot()
	report := newRunReport(models.ActionGenerateDealRecommendations, scope, now, snapshotDate)

	metrics, err := s.metrics.ListForDate(ctx, scope, snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("list product metrics: %w", err)
	}

	byProduct := make(map[string]models.ProductMetricView, len(metrics))
	ids := make([]string, 0, len(metrics))
	for _, m := range metrics {
		byProduct[m.ProductID] = m
		ids = append(ids, m.ProductID)
	}

	save := s.deals.Supersede
	if s.mode == config.DealsModeAppend {
		save = s.deals.Insert
	}

	err = s.runner.run(ctx, report, ids, func(ctx context.Context, productID string) (int, error) {
		created := 0
		for _, deal := range analytics.RecommendDeals(byProduct[productID], now) {
			deal := deal
			deal.ID = uuid.New().String()
			deal.CreatedAt = now
			if err := save(ctx, &deal); err != nil {
				log.Error().Err(err).Str("product_id", productID).Str("deal_type", string(deal.DealType)).Msg("Failed to save deal recommendation")
				return created, fmt.Errorf("save %s deal: %w", deal.DealType, err)
			}
			created++
		}
		return created, nil
	})
	report.FinishedAt = s.clock.now()
	return report, err
}
