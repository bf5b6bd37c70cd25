// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

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

func kill(cmd *exec.Cmd, sig Signal) error {
	pid := cmd.Process.Pid
	// Setpgid=true makes the process a group leader with PGID = PID.
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}

	// Negative PGID targets the whole group
	if err := syscall.Kill(-pgid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		// Fallback to the leader if the group signal is refused
		if perr := cmd.Process.Signal(sig); perr != nil && !errors.Is(perr, os.ErrProcessDone) {
			return err
		}
	}
	return nil
}
