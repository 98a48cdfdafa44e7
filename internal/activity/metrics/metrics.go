// Package metrics exposes Prometheus counters for the activity pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and
// records nothing, so tests can skip registration entirely.
type Metrics struct {
	ActionsReceived prometheus.Counter
	EventsEmitted   *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
	ReadDedupHits   prometheus.Counter
}

// Drop reasons recorded on EventsDropped.
const (
	DropFeatureDisabled = "feature_disabled"
	DropNotListened     = "not_listened"
	DropInternalUser    = "internal_user"
	DropExcludedOrigin  = "excluded_origin"
	DropUnhandled       = "unhandled"
)

// New creates and registers all pipeline metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ActionsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_actions_received_total",
			Help: "Total user actions delivered to the activity listener",
		}),
		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_events_emitted_total",
			Help: "Total activity events persisted to the stream store",
		}, []string{"event_access"}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_events_dropped_total",
			Help: "Total actions dropped before persistence, by gate",
		}, []string{"reason"}),
		ReadDedupHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_read_dedup_hits_total",
			Help: "Total read actions suppressed by the dedup cache",
		}),
	}
}

func (m *Metrics) IncActionsReceived() {
	if m == nil {
		return
	}
	m.ActionsReceived.Inc()
}

func (m *Metrics) IncEventsEmitted(access string) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(access).Inc()
}

func (m *Metrics) IncEventsDropped(reason string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncReadDedupHits() {
	if m == nil {
		return
	}
	m.ReadDedupHits.Inc()
}
