package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	EventsTotal     *prometheus.CounterVec
	UnknownEvents   prometheus.Counter
	SuppressedGifts prometheus.Counter
	StateWrites     prometheus.Counter
	StateWriteFails prometheus.Counter
	WSConnections   prometheus.Gauge
}

var Overlay = &Metrics{
	EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "overlay",
		Subsystem: "pipeline",
		Name:      "events_total",
	}, []string{"kind"}),
	UnknownEvents: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "overlay",
		Subsystem: "pipeline",
		Name:      "unknown_events_total",
	}),
	SuppressedGifts: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "overlay",
		Subsystem: "pipeline",
		Name:      "suppressed_community_gifts_total",
	}),
	StateWrites: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "overlay",
		Subsystem: "state",
		Name:      "writes_total",
	}),
	StateWriteFails: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "overlay",
		Subsystem: "state",
		Name:      "write_failures_total",
	}),
	WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "overlay",
		Subsystem: "ws",
		Name:      "connections",
	}),
}

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		Overlay.EventsTotal,
		Overlay.UnknownEvents,
		Overlay.SuppressedGifts,
		Overlay.StateWrites,
		Overlay.StateWriteFails,
		Overlay.WSConnections,
	)
}
