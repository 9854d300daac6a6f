package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/models"
)

// RunReport summarizes a batch action. Processed and Failed count entities
// (products or stores); Written counts rows produced.
type RunReport struct {
	ID           string       `json:"id"`
	Action       string       `json:"action"`
	Scope        models.Scope `json:"scope"`
	SnapshotDate time.Time    `json:"snapshotDate"`
	Processed    int          `json:"processed"`
	Failed       int          `json:"failed"`
	Written      int          `json:"written"`
	Failures     []string     `json:"failures"`
	StartedAt    time.Time    `json:"startedAt"`
	FinishedAt   time.Time    `json:"finishedAt"`
}

func newRunReport(action string, scope models.Scope, now, snapshotDate time.Time) *RunReport {
	return &RunReport{
		ID:           uuid.New().String(),
		Action:       action,
		Scope:        scope,
		SnapshotDate: snapshotDate,
		Failures:     make([]string, 0),
		StartedAt:    now,
	}
}

// Duration is the wall time between start and finish.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// PipelineRun converts the report into its persisted form.
func (r *RunReport) PipelineRun() *models.PipelineRun {
	return &models.PipelineRun{
		ID:           r.ID,
		Action:       r.Action,
		BusinessID:   r.Scope.BusinessPtr(),
		VerticalID:   r.Scope.VerticalPtr(),
		StoreID:      r.Scope.StorePtr(),
		ProductID:    r.Scope.ProductPtr(),
		SnapshotDate: r.SnapshotDate,
		Processed:    r.Processed,
		Failed:       r.Failed,
		Failures:     r.Failures,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

// batchRunner fans per-entity work out over a bounded pool. A failing entity
// is recorded on the report and never stops the others.
type batchRunner struct {
	limit  int
	sample int
}

func newBatchRunner(cfg config.PipelineConfig) batchRunner {
	limit := cfg.Concurrency
	if limit < 1 {
		limit = 1
	}
	return batchRunner{limit: limit, sample: cfg.FailureSample}
}

// run calls fn for every key. fn returns the number of rows it wrote, which
// is added to the report even when fn also fails. A cancelled ctx stops
// scheduling new keys and is returned once in-flight work finishes.
func (b batchRunner) run(ctx context.Context, report *RunReport, keys []string, fn func(ctx context.Context, key string) (int, error)) error {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(b.limit)

	for _, key := range keys {
		key := key
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			n, err := fn(ctx, key)

			mu.Lock()
			defer mu.Unlock()
			report.Written += n
			if err != nil {
				report.Failed++
				if len(report.Failures) < b.sample {
					report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", key, err))
				}
				return nil
			}
			report.Processed++
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}
