package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/analytics"
	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/models"
)

// PredictionService estimates per-store reorder likelihood of each product.
type PredictionService struct {
	catalog     CatalogReader
	orders      OrderHistoryReader
	scores      StoreScoreReader
	predictions PredictionStore
	runner      batchRunner
	clock       clock
}

// NewPredictionService constructs a PredictionService.
func NewPredictionService(catalog CatalogReader, orders OrderHistoryReader, scores StoreScoreReader, predictions PredictionStore, cfg config.PipelineConfig) *PredictionService {
	return &PredictionService{
		catalog:     catalog,
		orders:      orders,
		scores:      scores,
		predictions: predictions,
		runner:      newBatchRunner(cfg),
		clock:       newClock(cfg.Location),
	}
}

// ComputeStorePredictions rebuilds today's predictions of every active store
// in scope. Report.Written holds the number of prediction rows saved.
func (s *PredictionService) ComputeStorePredictions(ctx context.Context, scope models.Scope) (*RunReport, error) {
	now, snapshotDate := s.clock.snapshot()
	report := newRunReport(models.ActionComputeStorePredictions, scope, now, snapshotDate)

	stores, err := s.catalog.ListActiveStores(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	ids := make([]string, 0, len(stores))
	for _, st := range stores {
		ids = append(ids, st.ID)
	}

	since := now.Add(-analytics.Window90d)
	err = s.runner.run(ctx, report, ids, func(ctx context.Context, storeID string) (int, error) {
		heat := models.DefaultHeatScore
		score, err := s.scores.Latest(ctx, storeID)
		if err != nil {
			log.Warn().Err(err).Str("store_id", storeID).Msg("Failed to read store score")
			return 0, fmt.Errorf("read store score: %w", err)
		}
		if score != nil {
			heat = score.HeatScore
		}

		lines, err := s.orders.StoreLines(ctx, storeID, since, now)
		if err != nil {
			log.Warn().Err(err).Str("store_id", storeID).Msg("Failed to read store order history")
			return 0, fmt.Errorf("read order history: %w", err)
		}

		written := 0
		for _, p := range analytics.BuildStorePredictions(storeID, lines, heat, now, snapshotDate) {
			p := p
			if err := s.predictions.Upsert(ctx, &p); err != nil {
				log.Error().Err(err).Str("store_id", storeID).Str("product_id", p.ProductID).Msg("Failed to save prediction")
				return written, fmt.Errorf("save prediction %s: %w", p.ProductID, err)
			}
			written++
		}
		return written, nil
	})
	report.FinishedAt = s.clock.now()
	return report, err
}
