// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build windows

package procgroup

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// Signal is the platform signal type accepted by Kill.
type Signal = syscall.Signal

const (
	SIGTERM Signal = syscall.SIGTERM
	SIGKILL Signal = syscall.SIGKILL
)

func set(cmd *exec.Cmd) {
	// No process groups; only the root process is signalled.
}

func kill(cmd *exec.Cmd, _ Signal) error {
	// Windows has no graceful signal for console-less children.
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
