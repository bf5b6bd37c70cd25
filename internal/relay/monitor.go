// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"sync"
	"time"
)

// Monitor tracks media read recency for one stream and decides when a
// connection_slow event is due.
type Monitor struct {
	mu sync.Mutex

	interval     time.Duration
	clock        clock
	lastActivity time.Time
	slowReported int64 // connection_slow events emitted in the current silence
}

func newMonitor(interval time.Duration, c clock) *Monitor {
	return &Monitor{interval: interval, clock: c, lastActivity: c.Now()}
}

// Touch records media activity and ends the current silence.
func (m *Monitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = m.clock.Now()
	m.slowReported = 0
}

// Check is called on every poll tick. It reports true at most once per
// elapsed interval of silence, so faster ticks never repeat an event for the
// same interval.
func (m *Monitor) Check() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	silence := m.clock.Now().Sub(m.lastActivity)
	elapsed := int64(silence / m.interval)
	if elapsed > m.slowReported {
		m.slowReported = elapsed
		return true
	}
	return false
}

// LastActivity returns the time of the last recorded read.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}
