package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "pingcard"
)

// Render triggers.
const (
	TriggerTick    = "tick"
	TriggerStart   = "start"
	TriggerPreview = "preview"
)

var (
	publishDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

	// Card Metrics
	CardRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "card_renders_total",
		Help:      "Count of cards rendered from a telemetry snapshot.",
	}, []string{"trigger"})

	CardRendersSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "card_renders_skipped_total",
		Help:      "Count of ticks that rendered nothing because no telemetry was received yet.",
	})

	// Publish Metrics
	CardPublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "card_publishes_total",
		Help:      "Count of card publish attempts.",
	}, []string{"status"})

	CardPublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "card_publish_duration_seconds",
		Help:      "Time taken to publish a card to the messaging surface.",
		Buckets:   publishDurationBuckets,
	})

	CardLastPublishSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "card_last_publish_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful card publish.",
	})

	// Telemetry Metrics
	TelemetryUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_updates_total",
		Help:      "Count of telemetry snapshots received.",
	}, []string{"source"})

	TelemetryRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_rejected_total",
		Help:      "Count of telemetry payloads that could not be decoded.",
	}, []string{"source"})
)
