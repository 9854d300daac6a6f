package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics records batch run outcomes.
type PipelineMetrics struct {
	runs     *prometheus.CounterVec
	entities *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline collectors on reg using prefix.
func NewPipelineMetrics(reg prometheus.Registerer, prefix string) *PipelineMetrics {
	f := promauto.With(reg)
	return &PipelineMetrics{
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_pipeline_runs_total",
				Help: "Total number of pipeline runs by action and status",
			},
			[]string{"action", "status"},
		),
		entities: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_pipeline_entities_total",
				Help: "Entities (products or stores) handled by pipeline runs",
			},
			[]string{"action", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_pipeline_run_duration_seconds",
				Help:    "Duration of pipeline runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"action"},
		),
	}
}

// ObserveRun records one finished run. A run that returned an error counts as
// "error"; one with per-entity failures counts as "partial".
func (m *PipelineMetrics) ObserveRun(action string, processed, failed int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case failed > 0:
		status = "partial"
	}

	m.runs.WithLabelValues(action, status).Inc()
	m.entities.WithLabelValues(action, "processed").Add(float64(processed))
	m.entities.WithLabelValues(action, "failed").Add(float64(failed))
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}
