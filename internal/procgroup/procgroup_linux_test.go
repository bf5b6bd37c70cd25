// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build linux

package procgroup

import (
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetConfiguresGroupAndDeathSignal(t *testing.T) {
	cmd := exec.Command("true")
	Set(cmd)
	require.NotNil(t, cmd.SysProcAttr)
	require.True(t, cmd.SysProcAttr.Setpgid)
	require.Equal(t, syscall.SIGKILL, cmd.SysProcAttr.Pdeathsig)
}

func TestKillGroup(t *testing.T) {
	// Parent shell with a background child, both in one group
	cmd := exec.Command("sh", "-c", "sleep 100 & sleep 100")
	Set(cmd)

	require.NoError(t, cmd.Start())

	pid := cmd.Process.Pid
	pgid, err := syscall.Getpgid(pid)
	require.NoError(t, err)
	require.Equal(t, pid, pgid, "PID should be PGID leader")

	require.NoError(t, Kill(cmd, SIGKILL))

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("process group leader did not exit after SIGKILL")
	}

	process, _ := os.FindProcess(pid)
	require.Error(t, process.Signal(syscall.Signal(0)), "Parent process should be dead")

	// The background sleep is reaped by init; give it a moment to disappear.
	require.Eventually(t, func() bool {
		return syscall.Kill(-pgid, syscall.Signal(0)) == syscall.ESRCH
	}, 2*time.Second, 20*time.Millisecond, "process group should be dead")
}

func TestKillNotStartedIsNoop(t *testing.T) {
	require.NoError(t, Kill(nil, SIGTERM))
	require.NoError(t, Kill(exec.Command("true"), SIGTERM))
}

func TestKillAfterExitIsNoop(t *testing.T) {
	cmd := exec.Command("true")
	Set(cmd)
	require.NoError(t, cmd.Start())
	require.NoError(t, cmd.Wait())

	require.NoError(t, Kill(cmd, SIGTERM))
}
