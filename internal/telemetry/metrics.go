// Package telemetry exposes Prometheus counters for decoded input and
// finished sessions.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rotary2048"

// Input sources.
const (
	SourceRotary = "rotary"
	SourceButton = "button"
)

// KindIgnored labels input that was observed but produced no event.
const KindIgnored = "ignored"

var (
	inputEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "input_events_total",
		Help:      "Decoded input events by source and kind.",
	}, []string{"source", "kind"})

	supersededEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "superseded_events_total",
		Help:      "Events overwritten before the control loop consumed them.",
	}, []string{"source"})

	sessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Finished game sessions by outcome.",
	}, []string{"status"})

	renderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_errors_total",
		Help:      "Renderer failures that ended a session loop.",
	})

	maxTile = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_max_tile",
		Help:      "Highest tile reached per finished session.",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 11), // 2 .. 2048
	})
)

// ObserveInput counts one decoded (or ignored) input observation.
func ObserveInput(source, kind string) {
	inputEvents.WithLabelValues(source, kind).Inc()
}

// ObserveSuperseded counts an event replaced in its slot before being read.
func ObserveSuperseded(source string) {
	supersededEvents.WithLabelValues(source).Inc()
}

// ObserveSession counts a finished session.
func ObserveSession(status string, tile uint16) {
	sessions.WithLabelValues(status).Inc()
	maxTile.Observe(float64(tile))
}

// ObserveRenderError counts a renderer failure.
func ObserveRenderError() {
	renderErrors.Inc()
}
