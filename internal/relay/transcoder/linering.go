// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcoder

import (
	"sync"
)

// LineRing is a thread-safe ring buffer holding the last N diagnostic lines.
type LineRing struct {
	mu    sync.RWMutex
	lines []string
	head  int
	count int
}

// NewLineRing creates a LineRing with the specified capacity.
func NewLineRing(capacity int) *LineRing {
	if capacity < 1 {
		capacity = 50 // Default
	}
	return &LineRing{lines: make([]string, capacity)}
}

// Add records one line, evicting the oldest when full. Empty lines are ignored.
func (r *LineRing) Add(line string) {
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.head] = line
	r.head = (r.head + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
}

// LastN returns up to n most recent lines in chronological order.
func (r *LineRing) LastN(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	size := len(r.lines)
	// r.head is the next write position, so r.head-n is the oldest wanted line.
	for i := n; i > 0; i-- {
		out = append(out, r.lines[(r.head-i+size)%size])
	}
	return out
}
