// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"errors"
	"os/exec"
	"time"

	"github.com/ManuGH/camrelay/internal/log"
)

// Outcome records how a stop request ended. Clean and forced stops are both
// reported as success to callers; the distinction is kept for observability.
type Outcome string

const (
	OutcomeClean    Outcome = "clean"
	OutcomeForced   Outcome = "forced"
	OutcomeNotFound Outcome = "not_found"
)

// ShutdownController drives a session from running to terminated:
// signal the media task, SIGTERM, bounded wait, SIGKILL if needed.
type ShutdownController struct {
	SignalTimeout time.Duration
	GraceTimeout  time.Duration
	clock         clock
}

// NewShutdownController builds a controller with the given bounds.
func NewShutdownController(signalTimeout, graceTimeout time.Duration) *ShutdownController {
	return &ShutdownController{SignalTimeout: signalTimeout, GraceTimeout: graceTimeout, clock: realClock{}}
}

// Stop terminates s and releases everything it owns. It never fails: every
// problem on the way is logged and escalated to a forced kill.
func (c *ShutdownController) Stop(s *Session) Outcome {
	s.stopping.Store(true)
	logger := s.logger

	// 1. Signaling
	if !s.signalShutdown(c.clock.After(c.SignalTimeout)) {
		logger.Warn().
			Dur("timeout", c.SignalTimeout).
			Msg("media task did not acknowledge shutdown in time, proceeding")
	}

	// 2. Graceful termination request
	if err := s.proc.Terminate(); err != nil {
		logger.Warn().Err(err).Msg("failed to request graceful transcoder termination")
	}

	// 3. GracefulWait
	outcome := OutcomeClean
	select {
	case <-s.proc.Exited():
		if err := s.proc.ExitErr(); err != nil && !isExitStatus(err) {
			logger.Warn().Err(err).Msg("waiting for transcoder failed")
			outcome = OutcomeForced
		}
	case <-c.clock.After(c.GraceTimeout):
		logger.Warn().Dur("grace", c.GraceTimeout).Msg("transcoder still running after grace period")
		outcome = OutcomeForced
	}

	if outcome == OutcomeForced {
		if err := s.proc.Kill(); err != nil {
			logger.Error().Err(err).Msg("failed to kill transcoder")
		}
	}

	s.cancelSupervisor()
	s.release()

	logger.Info().
		Str(log.FieldEvent, "stream.stopped").
		Str(log.FieldOutcome, string(outcome)).
		Dur("uptime", c.clock.Now().Sub(s.StartedAt)).
		Msg("stream session terminated")
	return outcome
}

// Abandon force-releases a session without the graceful path. Used for a
// session displaced from the registry by a start with the same id.
func (c *ShutdownController) Abandon(s *Session) {
	s.stopping.Store(true)
	if err := s.proc.Kill(); err != nil {
		s.logger.Error().Err(err).Msg("failed to kill displaced transcoder")
	}
	s.cancelSupervisor()
	s.release()
	s.logger.Warn().Str(log.FieldEvent, "stream.displaced").Msg("displaced stream session released")
}

// isExitStatus reports whether err is just the process's exit status (for
// example "signal: terminated") rather than a failure to wait.
func isExitStatus(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
