// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveStreams tracks sessions currently held by the stream registry.
	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camrelay_active_streams",
		Help: "Number of live relay sessions currently registered",
	})

	StreamStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_stream_starts_total",
		Help: "Total number of stream start requests by result",
	}, []string{"result"})

	// StreamStopsTotal keeps clean and forced terminations apart even though
	// both are reported as success to the caller.
	StreamStopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_stream_stops_total",
		Help: "Total number of stream stop requests by outcome",
	}, []string{"outcome"})

	FramesPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camrelay_frames_published_total",
		Help: "Total number of JPEG frames published to subscribers",
	})

	FrameBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camrelay_frame_bytes_total",
		Help: "Total encoded frame bytes published to subscribers",
	})

	FrameSizeBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "camrelay_frame_size_bytes",
		Help:    "Size distribution of demultiplexed JPEG frames",
		Buckets: prometheus.ExponentialBuckets(4096, 2, 10), // 4KiB to 2MiB
	})

	StatusEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_status_events_total",
		Help: "Total number of connection status events by status",
	}, []string{"status"})

	BufferOverflowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camrelay_frame_buffer_overflows_total",
		Help: "Total number of frame buffers discarded after exceeding the ceiling",
	})

	ProcTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_proc_terminate_total",
		Help: "Signals sent to transcoder process groups by signal and result",
	}, []string{"signal", "result"})

	ProcExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camrelay_proc_exit_total",
		Help: "Transcoder process exits by reason",
	}, []string{"reason"})
)

// IncStreamStart records the result of a start request ("ok", "invalid", "spawn_failed").
func IncStreamStart(result string) {
	StreamStartsTotal.WithLabelValues(result).Inc()
}

// IncStreamStop records the outcome of a stop request ("clean", "forced", "not_found").
func IncStreamStop(outcome string) {
	StreamStopsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFrame records one published frame.
func ObserveFrame(size int) {
	FramesPublishedTotal.Inc()
	FrameBytesTotal.Add(float64(size))
	FrameSizeBytes.Observe(float64(size))
}

// IncStatus records a connection status event.
func IncStatus(status string) {
	StatusEventsTotal.WithLabelValues(status).Inc()
}

// IncProcTerminate records a termination signal delivery attempt.
func IncProcTerminate(signal, result string) {
	ProcTerminateTotal.WithLabelValues(signal, result).Inc()
}

// IncProcExit records a transcoder exit.
func IncProcExit(reason string) {
	ProcExitTotal.WithLabelValues(reason).Inc()
}
