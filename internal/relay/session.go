// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/relay/transcoder"
)

// Session is one live stream: the transcoder it exclusively owns, the
// shutdown channel of its media task, and its supervisory task. All three
// are released by teardown paths in shutdown.go, never piecemeal.
type Session struct {
	ID         string
	InstanceID string
	StartedAt  time.Time

	proc   Process
	media  *mediaTask
	ring   *transcoder.LineRing
	logger zerolog.Logger

	// ctx outlives the start request; cancelling it kills the process.
	ctx    context.Context
	cancel context.CancelFunc

	supCancel context.CancelFunc
	supDone   chan struct{}
	diagDone  chan struct{}

	stopping    atomic.Bool
	releaseOnce sync.Once
}

func newSession(ctx context.Context, cancel context.CancelFunc, id string, proc Process, emit *Emitter, opts Options, c clock) *Session {
	instance := uuid.New().String()
	logger := log.Derive(func(zc *zerolog.Context) {
		*zc = zc.Str(log.FieldComponent, "relay.session").
			Str(log.FieldStreamID, id).
			Str(log.FieldInstanceID, instance).
			Int(log.FieldPID, proc.Pid())
	})
	return &Session{
		ID:         id,
		InstanceID: instance,
		StartedAt:  c.Now(),
		proc:       proc,
		media:      newMediaTask(id, proc.Stdout(), emit, opts, c, logger),
		ring:       transcoder.NewLineRing(opts.StderrLines),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		supDone:    make(chan struct{}),
		diagDone:   make(chan struct{}),
	}
}

// start launches the diagnostic reader, the media task and the supervisor.
func (s *Session) start() {
	supCtx, supCancel := context.WithCancel(s.ctx)
	s.supCancel = supCancel

	go drainDiagnostics(s.proc.Stderr(), s.ring, s.logger, s.diagDone)
	go s.media.run(s.ctx)
	go s.supervise(supCtx)
}

// supervise idles until cancelled. It reports a transcoder that exits while
// the session is still registered but never kills the process itself.
func (s *Session) supervise(ctx context.Context) {
	defer close(s.supDone)

	select {
	case <-ctx.Done():
		return
	case <-s.proc.Exited():
	}
	if !s.stopping.Load() {
		s.logger.Warn().
			Err(s.proc.ExitErr()).
			Strs("stderr", s.ring.LastN(20)).
			Str(log.FieldEvent, "transcoder.exited").
			Msg("transcoder exited while stream is active")
	}
	<-ctx.Done()
}

// signalShutdown hands the one-shot notification to the media task. It gives
// up after timeout; a media task that already ended counts as delivered.
func (s *Session) signalShutdown(after <-chan time.Time) bool {
	select {
	case s.media.shutdown <- struct{}{}:
		return true
	case <-s.media.done:
		return true
	case <-after:
		return false
	}
}

func (s *Session) cancelSupervisor() {
	if s.supCancel != nil {
		s.supCancel()
	}
	<-s.supDone
}

// release cancels the session context (killing the process group if it is
// still around), closes the pipes and waits for the reader goroutines.
func (s *Session) release() {
	s.releaseOnce.Do(func() {
		s.cancel()
		if err := s.proc.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("closing transcoder pipes")
		}
		<-s.media.done
		<-s.diagDone
	})
}

// Done is closed when the media task has ended.
func (s *Session) Done() <-chan struct{} { return s.media.done }

// Diagnostics returns the most recent transcoder stderr lines.
func (s *Session) Diagnostics(n int) []string { return s.ring.LastN(n) }
