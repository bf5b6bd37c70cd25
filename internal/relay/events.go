// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/metrics"
)

// Publisher is the subset of the event bus used by sessions.
type Publisher interface {
	Publish(ctx context.Context, topic, payload string) error
}

// Emitter publishes fire-and-forget events: failures are logged and counted,
// never retried and never returned.
type Emitter struct {
	pub     Publisher
	timeout time.Duration
	logger  zerolog.Logger
}

// NewEmitter wraps pub with a per-event publish timeout.
func NewEmitter(pub Publisher, timeout time.Duration) *Emitter {
	return &Emitter{pub: pub, timeout: timeout, logger: log.WithComponent("relay.events")}
}

// Frame publishes one encoded frame as standard base64.
func (e *Emitter) Frame(ctx context.Context, streamID string, frame []byte) {
	if e.publish(ctx, FrameTopic(streamID), base64.StdEncoding.EncodeToString(frame)) {
		metrics.ObserveFrame(len(frame))
	}
}

// Status publishes a connection status.
func (e *Emitter) Status(ctx context.Context, streamID string, status Status) {
	metrics.IncStatus(string(status))
	e.publish(ctx, StatusTopic(streamID), string(status))
}

// Lifecycle publishes a session lifecycle notice.
func (e *Emitter) Lifecycle(ctx context.Context, streamID, event string) {
	e.publish(ctx, LifecycleTopic(streamID), event)
}

func (e *Emitter) publish(ctx context.Context, topic, payload string) bool {
	if e == nil || e.pub == nil {
		return false
	}
	pctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.pub.Publish(pctx, topic, payload); err != nil {
		e.logger.Debug().Err(err).Str("topic", topic).Msg("event dropped")
		return false
	}
	return true
}
