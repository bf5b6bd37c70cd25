// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BusPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_bus_published_total",
		Help: "Total number of events handed to the event bus by kind",
	}, []string{"backend", "kind"})

	BusDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_bus_dropped_total",
		Help: "Total number of event bus drops by kind and reason",
	}, []string{"kind", "reason"})
)

// IncBusPublished records an event accepted by a bus backend.
func IncBusPublished(backend, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	BusPublishedTotal.WithLabelValues(backend, kind).Inc()
}

// IncBusDropReason records a dropped bus event with a concrete reason.
func IncBusDropReason(kind, reason string) {
	if kind == "" {
		kind = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	BusDroppedTotal.WithLabelValues(kind, reason).Inc()
}
