// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"bufio"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/camrelay/internal/relay/transcoder"
)

const maxDiagLine = 64 * 1024

// drainDiagnostics consumes the transcoder's stderr until it closes. Every
// line lands in ring; debug logging is rate-limited so a chatty ffmpeg cannot
// flood the log.
func drainDiagnostics(r io.Reader, ring *transcoder.LineRing, logger zerolog.Logger, done chan<- struct{}) {
	defer close(done)

	limiter := rate.NewLimiter(rate.Every(time.Second), 5)
	suppressed := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), maxDiagLine)
	for scanner.Scan() {
		line := scanner.Text()
		ring.Add(line)
		if !limiter.Allow() {
			suppressed++
			continue
		}
		evt := logger.Debug().Str("line", line)
		if suppressed > 0 {
			evt = evt.Int("suppressed", suppressed)
			suppressed = 0
		}
		evt.Msg("transcoder diagnostic")
	}
	if err := scanner.Err(); err != nil {
		// An over-long line stops the scanner; keep draining so ffmpeg never
		// blocks on a full stderr pipe.
		logger.Debug().Err(err).Msg("diagnostic scanner stopped, discarding remaining output")
		_, _ = io.Copy(io.Discard, r)
	}
}
