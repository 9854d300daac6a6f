package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_revenue/internal/models"
	"github.com/GTDGit/gtd_revenue/internal/service"
)

// PipelineRunner runs the full metrics, predictions and deals sequence.
type PipelineRunner interface {
	RunPipeline(ctx context.Context, scope models.Scope) ([]*service.RunReport, error)
}

// PipelineWorker periodically recomputes today's snapshots for one scope.
type PipelineWorker struct {
	runner   PipelineRunner
	scope    models.Scope
	interval time.Duration
}

// NewPipelineWorker constructs a PipelineWorker.
func NewPipelineWorker(runner PipelineRunner, scope models.Scope, interval time.Duration) *PipelineWorker {
	return &PipelineWorker{
		runner:   runner,
		scope:    scope,
		interval: interval,
	}
}

// Start runs the pipeline immediately and then on every tick until ctx is
// cancelled.
func (w *PipelineWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Str("business_id", w.scope.BusinessID).
		Str("vertical_id", w.scope.VerticalID).
		Msg("Starting pipeline worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Pipeline worker stopped")
			return
		}
	}
}

func (w *PipelineWorker) run(ctx context.Context) {
	log.Info().Msg("Running revenue pipeline...")

	start := time.Now()
	reports, err := w.runner.RunPipeline(ctx, w.scope)
	if err != nil {
		log.Error().Err(err).Int("steps", len(reports)).Msg("Revenue pipeline aborted")
		return
	}

	failed := 0
	for _, r := range reports {
		failed += r.Failed
	}
	log.Info().
		Dur("duration", time.Since(start)).
		Int("steps", len(reports)).
		Int("failed", failed).
		Msg("Revenue pipeline completed")
}
