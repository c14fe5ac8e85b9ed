package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики конвейера задач.
//
// class:   "email" | "export"
// outcome: "acked" | "retried" | "dead_lettered"
var (
	// TasksEnqueued — задачи, принятые брокером (producer-сторона).
	TasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_tasks_enqueued_total",
		Help: "Tasks accepted by the broker, by task class",
	}, []string{"class"})

	// TasksProcessed — завершённые обработки, по исходу.
	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_tasks_processed_total",
		Help: "Finished task deliveries, by task class and outcome",
	}, []string{"class", "outcome"})

	// TaskDuration — длительность одной обработки (без учёта retry-задержек).
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bazaar_task_processing_seconds",
		Help:    "Duration of a single task processing attempt",
		Buckets: prometheus.DefBuckets,
	}, []string{"class"})
)
