// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"context"
	"io"

	"github.com/ManuGH/camrelay/internal/relay/transcoder"
)

// Process is a running transcoder as seen by a session.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	Pid() int
	Terminate() error
	Kill() error
	Exited() <-chan struct{}
	ExitErr() error
	Close() error
}

// Launcher spawns a transcoder for a stream URL. ctx bounds the process
// lifetime: cancelling it must kill the process.
type Launcher interface {
	Launch(ctx context.Context, streamURL string) (Process, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, streamURL string) (Process, error)

func (f LauncherFunc) Launch(ctx context.Context, streamURL string) (Process, error) {
	return f(ctx, streamURL)
}

// FFmpegLauncher adapts a transcoder.Launcher to Launcher.
func FFmpegLauncher(l *transcoder.Launcher) Launcher {
	return LauncherFunc(func(ctx context.Context, streamURL string) (Process, error) {
		p, err := l.Launch(ctx, streamURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

var _ Process = (*transcoder.Pipeline)(nil)
