package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// PipelineRunRepository stores run reports for diagnostics.
type PipelineRunRepository struct {
	db *sqlx.DB
}

// NewPipelineRunRepository creates a new PipelineRunRepository.
func NewPipelineRunRepository(db *sqlx.DB) *PipelineRunRepository {
	return &PipelineRunRepository{db: db}
}

// Create records a finished run.
func (r *PipelineRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	const q = `
        INSERT INTO pipeline_runs (
            id, action, business_id, vertical_id, store_id, product_id, snapshot_date,
            processed, failed, failures, started_at, finished_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, q,
		run.ID,
		run.Action,
		run.BusinessID,
		run.VerticalID,
		run.StoreID,
		run.ProductID,
		dateParam(run.SnapshotDate),
		run.Processed,
		run.Failed,
		run.Failures,
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

// ListRecent returns the latest runs, optionally filtered by action.
func (r *PipelineRunRepository) ListRecent(ctx context.Context, action string, limit int) ([]models.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
        SELECT id, action, business_id, vertical_id, store_id, product_id, snapshot_date,
            processed, failed, failures, started_at, finished_at
        FROM pipeline_runs
        WHERE ($1 = '' OR action = $1)
        ORDER BY started_at DESC
        LIMIT $2`

	runs := make([]models.PipelineRun, 0)
	if err := r.db.SelectContext(ctx, &runs, q, action, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
