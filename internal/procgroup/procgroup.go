// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup starts transcoder processes in their own process group so
// that termination signals reach ffmpeg and any helper it forks.
package procgroup

import "os/exec"

// Set configures the command to start in a new process group.
// On Linux the child additionally receives SIGKILL when the daemon dies, so an
// abandoned transcoder cannot outlive its owner.
// Mandatory for Kill to act as a group reaper.
func Set(cmd *exec.Cmd) {
	set(cmd)
}

// Kill sends sig to the process group of cmd.
// A nil command, an unstarted command, or a process that has already exited
// is not an error.
func Kill(cmd *exec.Cmd, sig Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return kill(cmd, sig)
}
