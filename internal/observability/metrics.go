// Package observability exposes the engine's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the engine's metric collector. One instance is shared by the
// queue-facing components and the worker pool.
type Metrics struct {
	TasksEnqueued    *prometheus.CounterVec
	TasksLeased      *prometheus.CounterVec
	Outcomes         *prometheus.CounterVec
	DeadLettered     prometheus.Counter
	ExecutionSeconds *prometheus.HistogramVec
	QueueDepth       *prometheus.GaugeVec
	TasksInFlight    prometheus.Gauge
	StrategyFlagged  *prometheus.CounterVec
}

// NewMetrics creates and registers the engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TasksEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applyflow_tasks_enqueued_total",
			Help: "Total number of submission tasks enqueued",
		}, []string{"tier"}),
		TasksLeased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applyflow_tasks_leased_total",
			Help: "Total number of task leases granted",
		}, []string{"tier"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applyflow_outcomes_total",
			Help: "Execution outcomes by status and reason",
		}, []string{"status", "reason"}),
		DeadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "applyflow_tasks_dead_lettered_total",
			Help: "Total number of tasks moved to the dead-letter queue",
		}),
		ExecutionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "applyflow_execution_seconds",
			Help:    "Wall-clock duration of adapter executions",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		}, []string{"adapter"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "applyflow_queue_depth",
			Help: "Current number of pending tasks per priority tier",
		}, []string{"tier"}),
		TasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "applyflow_tasks_in_flight",
			Help: "Current number of leased tasks",
		}),
		StrategyFlagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applyflow_strategy_ambiguity_flags_total",
			Help: "Strategies flagged for revalidation after repeated ambiguous outcomes",
		}, []string{"adapter"}),
	}

	reg.MustRegister(
		m.TasksEnqueued,
		m.TasksLeased,
		m.Outcomes,
		m.DeadLettered,
		m.ExecutionSeconds,
		m.QueueDepth,
		m.TasksInFlight,
		m.StrategyFlagged,
	)
	return m
}
