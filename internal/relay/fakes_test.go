// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// fakeProcess stands in for a transcoder. Writes to stdout reach the media
// task through an in-memory pipe.
type fakeProcess struct {
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	stderrR *io.PipeReader
	stderrW *io.PipeWriter

	pid        int
	ignoreTerm bool
	termErr    error // exit error reported after SIGTERM

	exited   chan struct{}
	exitOnce sync.Once
	exitMu   sync.Mutex
	exitErr  error

	terms  atomic.Int32
	kills  atomic.Int32
	closed atomic.Bool
}

func newFakeProcess(pid int) *fakeProcess {
	or, ow := io.Pipe()
	er, ew := io.Pipe()
	return &fakeProcess{
		stdoutR: or, stdoutW: ow,
		stderrR: er, stderrW: ew,
		pid:    pid,
		exited: make(chan struct{}),
	}
}

func (p *fakeProcess) Stdout() io.Reader       { return p.stdoutR }
func (p *fakeProcess) Stderr() io.Reader       { return p.stderrR }
func (p *fakeProcess) Pid() int                { return p.pid }
func (p *fakeProcess) Exited() <-chan struct{} { return p.exited }

func (p *fakeProcess) ExitErr() error {
	p.exitMu.Lock()
	defer p.exitMu.Unlock()
	return p.exitErr
}

func (p *fakeProcess) Terminate() error {
	p.terms.Add(1)
	if !p.ignoreTerm {
		p.exit(p.termErr)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.exit(errors.New("signal: killed"))
	return nil
}

// exit mimics the process going away: its ends of the pipes close.
func (p *fakeProcess) exit(err error) {
	p.exitOnce.Do(func() {
		p.exitMu.Lock()
		p.exitErr = err
		p.exitMu.Unlock()
		_ = p.stdoutW.Close()
		_ = p.stderrW.Close()
		close(p.exited)
	})
}

func (p *fakeProcess) Close() error {
	p.closed.Store(true)
	_ = p.stdoutR.Close()
	_ = p.stderrR.Close()
	return nil
}

// fakeLauncher hands out fake processes and remembers them.
type fakeLauncher struct {
	mu         sync.Mutex
	procs      []*fakeProcess
	urls       []string
	err        error
	ignoreTerm bool
	termErr    error
}

func (l *fakeLauncher) Launch(_ context.Context, streamURL string) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	p := newFakeProcess(4000 + len(l.procs))
	p.ignoreTerm = l.ignoreTerm
	p.termErr = l.termErr
	l.procs = append(l.procs, p)
	l.urls = append(l.urls, streamURL)
	return p, nil
}

func (l *fakeLauncher) launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.procs)
}

func (l *fakeLauncher) proc(i int) *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[i]
}

type event struct {
	Topic   string
	Payload string
}

// recorder is a Publisher that keeps everything in order.
type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Publish(_ context.Context, topic, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{Topic: topic, Payload: payload})
	return nil
}

func (r *recorder) snapshot() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func (r *recorder) payloads(topic string) []string {
	var out []string
	for _, e := range r.snapshot() {
		if e.Topic == topic {
			out = append(out, e.Payload)
		}
	}
	return out
}

// streamEvents returns frame and status events for streamID in publish order.
func (r *recorder) streamEvents(streamID string) []event {
	var out []event
	for _, e := range r.snapshot() {
		if e.Topic == FrameTopic(streamID) || e.Topic == StatusTopic(streamID) {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count(topic, payload string) int {
	n := 0
	for _, p := range r.payloads(topic) {
		if p == payload {
			n++
		}
	}
	return n
}

// fakeClock only moves when told to. Its timers never fire.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func (c *fakeClock) NewTicker(time.Duration) ticker { return stoppedTicker{} }

type stoppedTicker struct{}

func (stoppedTicker) C() <-chan time.Time { return nil }
func (stoppedTicker) Stop()               {}
