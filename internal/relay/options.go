// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"time"

	"github.com/ManuGH/camrelay/internal/relay/mjpeg"
)

// Options tunes session timing. Zero values fall back to DefaultOptions.
type Options struct {
	HealthInterval time.Duration // no-activity window before connection_slow
	StallPause     time.Duration // pause after an empty read or read error
	SignalTimeout  time.Duration // bound on delivering the shutdown notification
	GraceTimeout   time.Duration // wait for exit after SIGTERM before SIGKILL
	PublishTimeout time.Duration // per-event publish bound
	BufferCeiling  int           // frame buffer ceiling in bytes
	ReadSize       int           // bytes per media read
	StderrLines    int           // diagnostic lines kept per session
}

// DefaultOptions returns the production timing.
func DefaultOptions() Options {
	return Options{
		HealthInterval: 5 * time.Second,
		StallPause:     1 * time.Second,
		SignalTimeout:  5 * time.Second,
		GraceTimeout:   3 * time.Second,
		PublishTimeout: 250 * time.Millisecond,
		BufferCeiling:  mjpeg.DefaultCeiling,
		ReadSize:       32 * 1024,
		StderrLines:    256,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HealthInterval <= 0 {
		o.HealthInterval = d.HealthInterval
	}
	if o.StallPause <= 0 {
		o.StallPause = d.StallPause
	}
	if o.SignalTimeout <= 0 {
		o.SignalTimeout = d.SignalTimeout
	}
	if o.GraceTimeout <= 0 {
		o.GraceTimeout = d.GraceTimeout
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = d.PublishTimeout
	}
	if o.BufferCeiling <= 0 {
		o.BufferCeiling = d.BufferCeiling
	}
	if o.ReadSize <= 0 {
		o.ReadSize = d.ReadSize
	}
	if o.StderrLines <= 0 {
		o.StderrLines = d.StderrLines
	}
	return o
}
