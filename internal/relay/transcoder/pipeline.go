// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package transcoder owns the ffmpeg subprocess that turns a camera's RTSP
// stream into motion-JPEG on stdout.
package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/ManuGH/camrelay/internal/log"
	"github.com/ManuGH/camrelay/internal/metrics"
	"github.com/ManuGH/camrelay/internal/procgroup"
)

// ErrSpawn wraps every failure to launch the transcoder.
var ErrSpawn = errors.New("transcoder spawn failed")

// Launcher spawns transcoder pipelines with a fixed profile.
type Launcher struct {
	BinPath string
	Profile Profile
}

// NewLauncher returns a Launcher for binPath (default "ffmpeg").
func NewLauncher(binPath string, profile Profile) *Launcher {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Launcher{BinPath: binPath, Profile: profile}
}

// Pipeline is one running transcoder process and its two output streams.
type Pipeline struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File

	exited  chan struct{}
	exitErr error

	closeOnce sync.Once
}

// Launch starts the transcoder against streamURL. Cancelling ctx kills the
// whole process group, so ctx must live as long as the session.
func (l *Launcher) Launch(ctx context.Context, streamURL string) (*Pipeline, error) {
	args, err := BuildArgs(streamURL, l.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	return start(ctx, l.BinPath, args)
}

func start(ctx context.Context, bin string, args []string) (*Pipeline, error) {
	cmd := exec.CommandContext(ctx, bin, args...) // #nosec G204 -- args built without a shell
	procgroup.Set(cmd)
	cmd.Cancel = func() error {
		return procgroup.Kill(cmd, procgroup.SIGKILL)
	}

	// Our own pipes rather than StdoutPipe: Wait must not close the read ends
	// while the media reader is still draining them.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		for _, f := range []*os.File{stdoutR, stdoutW, stderrR, stderrW} {
			_ = f.Close()
		}
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	// The child holds its own copies; ours would keep EOF from ever arriving.
	_ = stdoutW.Close()
	_ = stderrW.Close()

	p := &Pipeline{
		cmd:    cmd,
		stdout: stdoutR,
		stderr: stderrR,
		exited: make(chan struct{}),
	}
	go p.wait()

	logger := log.WithComponent("transcoder")
	logger.Debug().
		Int(log.FieldPID, cmd.Process.Pid).
		Str("bin", bin).
		Msg("transcoder started")
	return p, nil
}

func (p *Pipeline) wait() {
	err := p.cmd.Wait()
	reason := "exit0"
	if err != nil {
		reason = "exit_nonzero"
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			reason = "wait_error"
		}
	}
	metrics.IncProcExit(reason)
	p.exitErr = err
	close(p.exited)
}

// Stdout is the media channel (MJPEG elementary stream).
func (p *Pipeline) Stdout() io.Reader { return p.stdout }

// Stderr is the diagnostic channel.
func (p *Pipeline) Stderr() io.Reader { return p.stderr }

// Pid returns the OS process id.
func (p *Pipeline) Pid() int { return p.cmd.Process.Pid }

// Terminate asks the process group to exit (SIGTERM).
func (p *Pipeline) Terminate() error {
	return p.signal(procgroup.SIGTERM, "SIGTERM")
}

// Kill forcibly ends the process group (SIGKILL).
func (p *Pipeline) Kill() error {
	return p.signal(procgroup.SIGKILL, "SIGKILL")
}

func (p *Pipeline) signal(sig procgroup.Signal, name string) error {
	select {
	case <-p.exited:
		metrics.IncProcTerminate(name, "esrch")
		return nil
	default:
	}
	if err := procgroup.Kill(p.cmd, sig); err != nil {
		metrics.IncProcTerminate(name, "error")
		return fmt.Errorf("send %s to pid %d: %w", name, p.cmd.Process.Pid, err)
	}
	metrics.IncProcTerminate(name, "sent")
	return nil
}

// Exited is closed once the process has been reaped.
func (p *Pipeline) Exited() <-chan struct{} { return p.exited }

// ExitErr returns the Wait result. Only meaningful after Exited is closed.
func (p *Pipeline) ExitErr() error {
	select {
	case <-p.exited:
		return p.exitErr
	default:
		return nil
	}
}

// Close releases the read ends of both pipes, unblocking any pending reads.
func (p *Pipeline) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = errors.Join(p.stdout.Close(), p.stderr.Close())
	})
	return err
}
