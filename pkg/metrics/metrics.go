// Package metrics provides Prometheus instrumentation for the concurrency
// toolkit components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for the toolkit components.
//
// Components take an optional *Registry in their Config; a nil registry
// disables instrumentation entirely.
type Registry struct {
	// Timer (delayed/repeating task) metrics
	TimerTasksScheduled *prometheus.CounterVec
	TimerTasksFired     *prometheus.CounterVec
	TimerTasksCanceled  *prometheus.CounterVec
	TimerTasksPending   *prometheus.GaugeVec

	// Serial executor metrics
	ExecutorSubmitted *prometheus.CounterVec
	ExecutorRejected  *prometheus.CounterVec
	ExecutorExecuted  *prometheus.CounterVec
	ExecutorBacklog   *prometheus.GaugeVec

	// Thread pool metrics
	PoolThreads      *prometheus.GaugeVec
	PoolActive       *prometheus.GaugeVec
	PoolBacklog      *prometheus.GaugeVec
	PoolTasksRun     *prometheus.CounterVec
	PoolTasksDropped *prometheus.CounterVec
	PoolTaskPanics   *prometheus.CounterVec
	PoolTaskDuration *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry, bound to the process-wide
// Prometheus registerer.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TimerTasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "timer",
				Name:      "tasks_scheduled_total",
				Help:      "Total number of delayed/repeating tasks scheduled",
			},
			[]string{"scheduler_name", "kind"},
		),

		TimerTasksFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "timer",
				Name:      "tasks_fired_total",
				Help:      "Total number of task callback invocations",
			},
			[]string{"scheduler_name", "kind"},
		),

		TimerTasksCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "timer",
				Name:      "tasks_canceled_total",
				Help:      "Total number of tasks canceled before firing",
			},
			[]string{"scheduler_name", "kind"},
		),

		TimerTasksPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "zilker",
				Subsystem: "timer",
				Name:      "tasks_pending",
				Help:      "Number of tasks currently registered and waiting",
			},
			[]string{"scheduler_name"},
		),

		ExecutorSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "executor",
				Name:      "submitted_total",
				Help:      "Total number of tasks accepted by the serial executor",
			},
			[]string{"executor_name"},
		),

		ExecutorRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "executor",
				Name:      "rejected_total",
				Help:      "Total number of submissions rejected (backpressure or shutdown)",
			},
			[]string{"executor_name", "reason"},
		),

		ExecutorExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "executor",
				Name:      "executed_total",
				Help:      "Total number of tasks run by the serial executor",
			},
			[]string{"executor_name"},
		),

		ExecutorBacklog: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "zilker",
				Subsystem: "executor",
				Name:      "backlog",
				Help:      "Current queued-but-not-started task count",
			},
			[]string{"executor_name"},
		),

		PoolThreads: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "threads",
				Help:      "Current number of worker goroutines",
			},
			[]string{"pool_name"},
		),

		PoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "active",
				Help:      "Number of workers currently executing a task",
			},
			[]string{"pool_name"},
		),

		PoolBacklog: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "backlog",
				Help:      "Current queued-but-not-started task count",
			},
			[]string{"pool_name"},
		),

		PoolTasksRun: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "tasks_run_total",
				Help:      "Total number of tasks run by pool workers",
			},
			[]string{"pool_name"},
		),

		PoolTasksDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "tasks_dropped_total",
				Help:      "Total number of submissions rejected (backpressure or shutdown)",
			},
			[]string{"pool_name", "reason"},
		),

		PoolTaskPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "task_panics_total",
				Help:      "Total number of recovered panics in pool tasks",
			},
			[]string{"pool_name"},
		),

		PoolTaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "zilker",
				Subsystem: "threadpool",
				Name:      "task_duration_seconds",
				Help:      "Pool task execution duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),
	}
}
