// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package relay runs live camera relay sessions: one transcoder per stream,
// its output split into JPEG frames and published with connection health.
package relay

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/metrics"
	"github.com/ManuGH/camrelay/internal/relay/transcoder"
	"github.com/ManuGH/camrelay/internal/telemetry"
)

// StreamRequest describes the camera endpoint of a new stream. It is only
// used to build the transport URL and is not retained.
type StreamRequest struct {
	StreamID string `json:"stream_id"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Address  string `json:"address"`
	Path     string `json:"path"`
}

// Validate checks the fields required to reach the camera.
func (r StreamRequest) Validate() error {
	if strings.TrimSpace(r.StreamID) == "" {
		return fmt.Errorf("%w: stream id must not be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("%w: address must not be empty", ErrInvalidArgument)
	}
	if transcoder.TrimPath(r.Path) == "" {
		return fmt.Errorf("%w: stream path must not be empty", ErrInvalidArgument)
	}
	return nil
}

// URL returns the RTSP URL for the request.
func (r StreamRequest) URL() string {
	return transcoder.BuildURL(r.Username, r.Password, r.Address, r.Path)
}

// Registry is the process-wide table of active sessions. mu guards only the
// map and is never held while spawning, publishing or waiting, so operations
// on different ids never block each other.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	launcher Launcher
	emit     *Emitter
	shutdown *ShutdownController
	opts     Options
	clock    clock
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry spawning processes through launcher
// and publishing events to pub.
func NewRegistry(launcher Launcher, pub Publisher, opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		sessions: make(map[string]*Session),
		launcher: launcher,
		emit:     NewEmitter(pub, opts.PublishTimeout),
		shutdown: NewShutdownController(opts.SignalTimeout, opts.GraceTimeout),
		opts:     opts,
		clock:    realClock{},
		tracer:   telemetry.Tracer("camrelay/relay"),
		logger:   log.WithComponent("relay"),
	}
}

// Start launches a stream. Malformed requests fail with ErrInvalidArgument;
// a transcoder that cannot be spawned yields a non-success Result instead.
// Starting an id that is already running replaces the old session.
func (r *Registry) Start(ctx context.Context, req StreamRequest) (Result, error) {
	ctx, span := r.tracer.Start(ctx, "relay.start", trace.WithAttributes(telemetry.StreamAttributes(req.StreamID)...))
	defer span.End()
	logger := log.WithContext(ctx, r.logger).With().Str(log.FieldStreamID, req.StreamID).Logger()

	if err := req.Validate(); err != nil {
		metrics.IncStreamStart("invalid")
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Msg("rejected stream start")
		return Result{IsSuccess: false, Message: err.Error(), Err: err}, err
	}

	streamURL := req.URL()
	// The session context is detached from the request: the stream lives on
	// after the start call returns.
	sessCtx, cancel := context.WithCancel(context.Background())
	proc, err := r.launcher.Launch(sessCtx, streamURL)
	if err != nil {
		cancel()
		err = fmt.Errorf("%w: %w", ErrSpawnFailed, err)
		metrics.IncStreamStart("spawn_failed")
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes("spawn_failed")...)
		span.SetStatus(codes.Error, "spawn failed")
		logger.Error().Err(err).
			Str(log.FieldURL, transcoder.RedactURL(streamURL)).
			Msg("failed to spawn transcoder")
		return Result{
			IsSuccess: false,
			Message:   fmt.Sprintf("failed to start stream %s: %v", req.StreamID, err),
			Err:       err,
		}, nil
	}

	s := newSession(sessCtx, cancel, req.StreamID, proc, r.emit, r.opts, r.clock)
	s.start()

	r.mu.Lock()
	old := r.sessions[req.StreamID]
	r.sessions[req.StreamID] = s
	active := len(r.sessions)
	r.mu.Unlock()
	metrics.ActiveStreams.Set(float64(active))

	if old != nil {
		logger.Warn().
			Str("displaced_instance", old.InstanceID).
			Msg("stream id reused without stop, releasing displaced session")
		r.emit.Lifecycle(ctx, req.StreamID, LifecycleReplaced)
		go r.shutdown.Abandon(old)
	}

	metrics.IncStreamStart("ok")
	span.SetAttributes(attribute.Int("process.pid", proc.Pid()))
	r.emit.Lifecycle(ctx, req.StreamID, LifecycleStarted)
	logger.Info().
		Str(log.FieldEvent, "stream.started").
		Str(log.FieldInstanceID, s.InstanceID).
		Int(log.FieldPID, proc.Pid()).
		Str(log.FieldURL, transcoder.RedactURL(streamURL)).
		Msg("stream session started")
	return Result{IsSuccess: true, Message: fmt.Sprintf("stream %s started", req.StreamID)}, nil
}

// Stop removes the session and terminates it. Only an unknown id yields a
// non-success Result; clean and forced termination both succeed.
func (r *Registry) Stop(ctx context.Context, streamID string) Result {
	ctx, span := r.tracer.Start(ctx, "relay.stop", trace.WithAttributes(telemetry.StreamAttributes(streamID)...))
	defer span.End()

	r.mu.Lock()
	s, ok := r.sessions[streamID]
	if ok {
		delete(r.sessions, streamID)
	}
	active := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		metrics.IncStreamStop(string(OutcomeNotFound))
		span.SetAttributes(attribute.String(telemetry.StopOutcomeKey, string(OutcomeNotFound)))
		return Result{
			IsSuccess: false,
			Message:   fmt.Sprintf("stream %s not found", streamID),
			Outcome:   OutcomeNotFound,
			Err:       fmt.Errorf("%w: %s", ErrStreamNotFound, streamID),
		}
	}
	metrics.ActiveStreams.Set(float64(active))

	outcome := r.shutdown.Stop(s)
	metrics.IncStreamStop(string(outcome))
	span.SetAttributes(attribute.String(telemetry.StopOutcomeKey, string(outcome)))

	msg := fmt.Sprintf("stream %s stopped cleanly", streamID)
	event := LifecycleStoppedClean
	if outcome == OutcomeForced {
		msg = fmt.Sprintf("stream %s force stopped", streamID)
		event = LifecycleStoppedForced
	}
	r.emit.Lifecycle(ctx, streamID, event)
	return Result{IsSuccess: true, Message: msg, Outcome: outcome}
}

// Has reports whether streamID is currently registered.
func (r *Registry) Has(streamID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[streamID]
	return ok
}

// List returns the active stream ids in sorted order.
func (r *Registry) List() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every session concurrently. It returns ctx's error if the
// stops do not finish in time; the stops themselves keep running.
func (r *Registry) Close(ctx context.Context) error {
	ids := r.List()
	if len(ids) == 0 {
		return nil
	}
	r.logger.Info().Int("streams", len(ids)).Msg("stopping all stream sessions")

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			r.Stop(ctx, id)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop stream sessions: %w", ctx.Err())
	}
}
