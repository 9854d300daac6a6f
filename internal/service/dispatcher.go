package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/cache"
	"github.com/GTDGit/gtd_revenue/internal/models"
	"github.com/GTDGit/gtd_revenue/internal/utils"
)

// Request is one pipeline invocation: an action plus optional scope.
type Request struct {
	Action string `json:"action"`
	models.Scope
}

// Result carries the output of a dispatched action. Only the field matching
// the action is set.
type Result struct {
	Action      string
	Report      *RunReport
	Predictions []models.StorePredictionView
	HeroGhost   *HeroGhost
}

// RunObserver receives the outcome of every batch run.
type RunObserver interface {
	ObserveRun(action string, processed, failed int, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(string, int, int, time.Duration, error) {}

// Dispatcher routes actions to the pipeline services and records run reports.
type Dispatcher struct {
	metrics     *MetricsService
	predictions *PredictionService
	deals       *DealService
	query       *QueryService
	runs        RunLog
	cache       SnapshotCache
	observer    RunObserver
}

// NewDispatcher constructs a Dispatcher. A nil observer discards run metrics.
func NewDispatcher(
	metrics *MetricsService,
	predictions *PredictionService,
	deals *DealService,
	query *QueryService,
	runs RunLog,
	snapshots SnapshotCache,
	observer RunObserver,
) *Dispatcher {
	if observer == nil {
		observer = nopObserver{}
	}
	if snapshots == nil {
		snapshots = cache.NopSnapshotCache{}
	}
	return &Dispatcher{
		metrics:     metrics,
		predictions: predictions,
		deals:       deals,
		query:       query,
		runs:        runs,
		cache:       snapshots,
		observer:    observer,
	}
}

// Dispatch validates req and runs its action. Unknown actions and malformed
// scopes fail before any work is done.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	scope, err := scopeFor(req.Action, req.Scope)
	if err != nil {
		return nil, err
	}
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}

	switch req.Action {
	case models.ActionComputeProductMetrics:
		return d.compute(ctx, req.Action, scope, d.metrics.ComputeProductMetrics)
	case models.ActionComputeStorePredictions:
		return d.compute(ctx, req.Action, scope, d.predictions.ComputeStorePredictions)
	case models.ActionGenerateDealRecommendations:
		return d.compute(ctx, req.Action, scope, d.deals.GenerateDealRecommendations)
	case models.ActionGetStorePredictions:
		if scope.StoreID == "" {
			return nil, utils.ErrMissingStoreID
		}
		return &Result{Action: req.Action, Predictions: d.query.StorePredictions(ctx, scope.StoreID)}, nil
	default:
		hg := d.query.HeroGhost(ctx, scope)
		return &Result{Action: req.Action, HeroGhost: &hg}, nil
	}
}

// scopeFor keeps the scope fields an action reads and rejects unknown actions.
func scopeFor(action string, s models.Scope) (models.Scope, error) {
	switch action {
	case models.ActionComputeProductMetrics, models.ActionGenerateDealRecommendations:
		return models.Scope{BusinessID: s.BusinessID, VerticalID: s.VerticalID, ProductID: s.ProductID}, nil
	case models.ActionComputeStorePredictions:
		return models.Scope{BusinessID: s.BusinessID, VerticalID: s.VerticalID, StoreID: s.StoreID}, nil
	case models.ActionGetStorePredictions:
		return models.Scope{StoreID: s.StoreID}, nil
	case models.ActionGetHeroGhostSKUs:
		return models.Scope{BusinessID: s.BusinessID, VerticalID: s.VerticalID}, nil
	default:
		return models.Scope{}, fmt.Errorf("%w: %q", utils.ErrUnknownAction, action)
	}
}

// ValidateScope rejects scope ids that are not UUIDs.
func ValidateScope(s models.Scope) error {
	fields := []struct{ name, value string }{
		{"businessId", s.BusinessID},
		{"verticalId", s.VerticalID},
		{"storeId", s.StoreID},
		{"productId", s.ProductID},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := uuid.Parse(f.value); err != nil {
			return fmt.Errorf("%w: %s is not a valid id", utils.ErrInvalidScope, f.name)
		}
	}
	return nil
}

type computeFunc func(ctx context.Context, scope models.Scope) (*RunReport, error)

func (d *Dispatcher) compute(ctx context.Context, action string, scope models.Scope, fn computeFunc) (*Result, error) {
	start := time.Now()
	report, err := fn(ctx, scope)
	if report == nil {
		d.observer.ObserveRun(action, 0, 0, time.Since(start), err)
		log.Error().Err(err).Str("action", action).Msg("Pipeline run failed")
		return nil, err
	}

	d.observer.ObserveRun(action, report.Processed, report.Failed, report.Duration(), err)
	log.Info().
		Str("action", action).
		Str("run_id", report.ID).
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Int("written", report.Written).
		Dur("duration", report.Duration()).
		Msg("Pipeline run finished")

	// the run record and cache refresh must survive a cancelled request
	bg := context.WithoutCancel(ctx)
	if report.Written > 0 {
		if ierr := d.cache.InvalidateDate(bg, report.SnapshotDate); ierr != nil {
			log.Warn().Err(ierr).Str("action", action).Msg("Failed to invalidate snapshot cache")
		}
	}
	if rerr := d.runs.Create(bg, report.PipelineRun()); rerr != nil {
		log.Error().Err(rerr).Str("run_id", report.ID).Msg("Failed to save pipeline run")
	}

	if err != nil {
		return nil, err
	}
	return &Result{Action: action, Report: report}, nil
}

// RunPipeline runs metrics, predictions and deals for scope in that order.
// Deals are skipped when the metrics step produced nothing usable. The
// reports of the steps that ran are returned.
func (d *Dispatcher) RunPipeline(ctx context.Context, scope models.Scope) ([]*RunReport, error) {
	reports := make([]*RunReport, 0, 3)

	metrics, err := d.Dispatch(ctx, Request{Action: models.ActionComputeProductMetrics, Scope: scope})
	metricsUsable := err == nil && (metrics.Report.Processed > 0 || metrics.Report.Failed == 0)
	if err != nil {
		if ctx.Err() != nil {
			return reports, err
		}
	} else {
		reports = append(reports, metrics.Report)
	}

	predictions, err := d.Dispatch(ctx, Request{Action: models.ActionComputeStorePredictions, Scope: scope})
	if err != nil {
		if ctx.Err() != nil {
			return reports, err
		}
	} else {
		reports = append(reports, predictions.Report)
	}

	if !metricsUsable {
		log.Warn().Msg("Skipping deal recommendations: product metrics step failed")
		return reports, nil
	}

	deals, err := d.Dispatch(ctx, Request{Action: models.ActionGenerateDealRecommendations, Scope: scope})
	if err != nil {
		return reports, err
	}
	return append(reports, deals.Report), nil
}
