// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/ManuGH/camrelay/internal/metrics"
	"github.com/ManuGH/camrelay/internal/relay/mjpeg"
)

type readResult struct {
	data []byte
	err  error
}

// mediaTask reads the transcoder's stdout, demultiplexes frames and publishes
// frames and status events for one stream.
type mediaTask struct {
	streamID string
	src      io.Reader
	demux    *mjpeg.Demuxer
	monitor  *Monitor
	emit     *Emitter
	opts     Options
	clock    clock
	logger   zerolog.Logger

	// shutdown is unbuffered: a completed send means the loop has acknowledged it.
	shutdown chan struct{}
	done     chan struct{}
}

func newMediaTask(streamID string, src io.Reader, emit *Emitter, opts Options, c clock, logger zerolog.Logger) *mediaTask {
	return &mediaTask{
		streamID: streamID,
		src:      src,
		demux:    mjpeg.NewDemuxer(opts.BufferCeiling),
		monitor:  newMonitor(opts.HealthInterval, c),
		emit:     emit,
		opts:     opts,
		clock:    c,
		logger:   logger,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// run is the session's event loop. Each iteration waits for whichever comes
// first: the shutdown notification, a health tick, or the next read. ctx is
// the session context and only ends once teardown is releasing resources.
func (t *mediaTask) run(ctx context.Context) {
	defer close(t.done)

	reads := make(chan readResult)
	stop := make(chan struct{})
	defer close(stop)
	go t.readLoop(reads, stop)

	tick := t.clock.NewTicker(t.opts.HealthInterval)
	defer tick.Stop()

	for {
		select {
		case <-t.shutdown:
			t.logger.Debug().Msg("media task received shutdown")
			return
		case <-ctx.Done():
			return
		case <-tick.C():
			if t.monitor.Check() {
				t.logger.Debug().Dur("idle", t.clock.Now().Sub(t.monitor.LastActivity())).Msg("no media activity within health interval")
				t.emit.Status(ctx, t.streamID, StatusConnectionSlow)
			}
		case res := <-reads:
			if !t.handle(ctx, res) {
				return
			}
		}
	}
}

// handle processes one read result and reports whether the loop should go on.
func (t *mediaTask) handle(ctx context.Context, res readResult) bool {
	switch {
	case len(res.data) > 0:
		t.monitor.Touch()
		overflows := t.demux.Overflows()
		for _, frame := range t.demux.Feed(res.data) {
			t.emit.Frame(ctx, t.streamID, frame)
			t.emit.Status(ctx, t.streamID, StatusConnected)
		}
		if t.demux.Overflows() > overflows {
			metrics.BufferOverflowsTotal.Inc()
			t.logger.Warn().Int("ceiling", t.opts.BufferCeiling).Msg("frame buffer exceeded ceiling without a complete frame, discarded")
		}
		return true
	case res.err == nil || errors.Is(res.err, io.EOF):
		// Nothing available right now; treat as a transient stall.
		t.emit.Status(ctx, t.streamID, StatusDisconnected)
		return t.pause(ctx)
	default:
		t.logger.Warn().Err(res.err).Msg("media read failed")
		t.emit.Status(ctx, t.streamID, StatusError)
		return t.pause(ctx)
	}
}

// pause waits StallPause unless shutdown arrives first.
func (t *mediaTask) pause(ctx context.Context) bool {
	select {
	case <-t.shutdown:
		t.logger.Debug().Msg("media task received shutdown while paused")
		return false
	case <-ctx.Done():
		return false
	case <-t.clock.After(t.opts.StallPause):
		return true
	}
}

// readLoop performs the blocking reads. The unbuffered hand-off keeps at most
// one read in flight and lets the loop's pauses throttle retries.
func (t *mediaTask) readLoop(out chan<- readResult, stop <-chan struct{}) {
	for {
		buf := make([]byte, t.opts.ReadSize)
		n, err := t.src.Read(buf)
		if n > 0 {
			select {
			case out <- readResult{data: buf[:n]}:
			case <-stop:
				return
			}
		}
		if err != nil || n == 0 {
			select {
			case out <- readResult{err: err}:
			case <-stop:
				return
			}
		}
	}
}
