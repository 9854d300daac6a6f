package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/analytics"
	"github.com/GTDGit/gtd_revenue/internal/cache"
	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/models"
)

// DealListLimit caps the active deal listing.
const DealListLimit = 50

// HeroGhost is the dashboard listing of strongest and most stagnant products.
type HeroGhost struct {
	Heroes []models.ProductMetricView `json:"heroes"`
	Ghosts []models.ProductMetricView `json:"ghosts"`
}

// QueryService serves today's snapshots to dashboards. Data store failures
// are logged and answered with empty lists.
type QueryService struct {
	metrics     MetricStore
	predictions PredictionStore
	deals       DealStore
	runs        RunLog
	cache       SnapshotCache
	clock       clock
}

// NewQueryService constructs a QueryService. A nil cache disables caching.
func NewQueryService(metrics MetricStore, predictions PredictionStore, deals DealStore, runs RunLog, snapshots SnapshotCache, cfg config.PipelineConfig) *QueryService {
	if snapshots == nil {
		snapshots = cache.NopSnapshotCache{}
	}
	return &QueryService{
		metrics:     metrics,
		predictions: predictions,
		deals:       deals,
		runs:        runs,
		cache:       snapshots,
		clock:       newClock(cfg.Location),
	}
}

// StorePredictions returns up to ten of today's predictions for storeID,
// most likely reorders first.
func (q *QueryService) StorePredictions(ctx context.Context, storeID string) []models.StorePredictionView {
	_, date := q.clock.snapshot()
	key := cache.StorePredictionsKey(date, storeID)

	var cached []models.StorePredictionView
	if q.load(ctx, key, &cached) {
		return cached
	}

	rows, err := q.predictions.ListForStore(ctx, storeID, date, analytics.StorePredictionLimit)
	if err != nil {
		log.Error().Err(err).Str("store_id", storeID).Msg("Failed to load store predictions")
		return make([]models.StorePredictionView, 0)
	}
	q.store(ctx, key, rows, date)
	return rows
}

// HeroGhost returns today's top heroes and ghosts in scope, five of each.
func (q *QueryService) HeroGhost(ctx context.Context, scope models.Scope) HeroGhost {
	_, date := q.clock.snapshot()
	key := cache.HeroGhostKey(date, scope)

	var cached HeroGhost
	if q.load(ctx, key, &cached) {
		return cached
	}

	result := HeroGhost{
		Heroes: make([]models.ProductMetricView, 0),
		Ghosts: make([]models.ProductMetricView, 0),
	}
	complete := true

	heroes, err := q.metrics.TopHeroes(ctx, scope, date, analytics.HeroListFloor, analytics.HeroGhostListLimit)
	if err != nil {
		log.Error().Err(err).Str("business_id", scope.BusinessID).Msg("Failed to load hero products")
		complete = false
	} else {
		result.Heroes = heroes
	}

	ghosts, err := q.metrics.TopGhosts(ctx, scope, date, analytics.GhostListFloor, analytics.HeroGhostListLimit)
	if err != nil {
		log.Error().Err(err).Str("business_id", scope.BusinessID).Msg("Failed to load ghost products")
		complete = false
	} else {
		result.Ghosts = ghosts
	}

	if complete {
		q.store(ctx, key, result, date)
	}
	return result
}

// ActiveDeals returns today's unexpired recommendations in scope, newest first.
func (q *QueryService) ActiveDeals(ctx context.Context, scope models.Scope) []models.DealRecommendation {
	now, date := q.clock.snapshot()
	key := cache.DealsKey(date, scope)

	var cached []models.DealRecommendation
	if q.load(ctx, key, &cached) {
		return cached
	}

	deals, err := q.deals.ListActive(ctx, scope, date, now, DealListLimit)
	if err != nil {
		log.Error().Err(err).Str("business_id", scope.BusinessID).Msg("Failed to load deal recommendations")
		return make([]models.DealRecommendation, 0)
	}
	q.store(ctx, key, deals, date)
	return deals
}

// RecentRuns returns the latest run records, optionally for one action.
func (q *QueryService) RecentRuns(ctx context.Context, action string, limit int) ([]models.PipelineRun, error) {
	return q.runs.ListRecent(ctx, action, limit)
}

func (q *QueryService) load(ctx context.Context, key string, dest interface{}) bool {
	hit, err := q.cache.Load(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to read snapshot cache")
		return false
	}
	return hit
}

func (q *QueryService) store(ctx context.Context, key string, value interface{}, date time.Time) {
	if err := q.cache.Store(ctx, key, value, date); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to write snapshot cache")
	}
}
