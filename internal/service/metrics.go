package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scenario_service_generations_started_total",
			Help: "Total number of alternative path generations started.",
		},
	)
	generationsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_service_generations_settled_total",
			Help: "Total number of settled generations by outcome.",
		},
		[]string{"outcome"}, // completed | generation_failed | persistence_failed | recovery_failed
	)
	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scenario_service_generation_duration_seconds",
			Help:    "Histogram of generation durations from start to settle.",
			Buckets: prometheus.DefBuckets,
		},
	)
	invalidStateRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scenario_service_generation_invalid_state_total",
			Help: "Generate requests rejected because of the scenario's current status.",
		},
	)
)

func metricsObserveSettled(outcome string, startTime time.Time) {
	generationsSettled.WithLabelValues(outcome).Inc()
	generationDuration.Observe(time.Since(startTime).Seconds())
}
