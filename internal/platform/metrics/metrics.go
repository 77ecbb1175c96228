// Package metrics holds the prometheus instruments for the reading pipeline.
// They are registered on the default registry served at /-/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for ReadingsTotal.
const (
	OutcomeSuccess       = "success"
	OutcomeValidation    = "validation_error"
	OutcomeConfiguration = "configuration_error"
	OutcomeGeneration    = "generation_error"
	OutcomeCanceled      = "canceled"
	OutcomeInternal      = "internal_error"
)

var (
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tarot",
			Name:      "readings_total",
			Help:      "Total number of reading requests by outcome",
		},
		[]string{"outcome", "spread_size"},
	)

	ReadingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tarot",
			Name:      "reading_duration_seconds",
			Help:      "Duration of reading generation in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"outcome"},
	)

	CompletionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tarot",
			Name:      "completions_in_flight",
			Help:      "Number of chat-completion calls currently holding a worker slot",
		},
	)

	CompletionWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tarot",
			Name:      "completion_slot_wait_seconds",
			Help:      "Time spent waiting for a free worker slot",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)

	ZodiacContextTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tarot",
			Name:      "zodiac_context_total",
			Help:      "Readings by whether a recognized zodiac sign was included",
		},
		[]string{"included"},
	)

	StepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tarot",
			Name:      "operation_step_failures_total",
			Help:      "Operation failures by the step that failed",
		},
		[]string{"operation", "step"},
	)

	PanicsRecoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tarot",
			Name:      "http_panics_recovered_total",
			Help:      "Handler panics turned into 500 responses, by route",
		},
		[]string{"route"},
	)
)
