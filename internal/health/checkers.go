// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"os/exec"
	"time"
)

// BinaryChecker checks that an executable resolves on PATH (or as a path).
type BinaryChecker struct {
	name     string
	bin      string
	lookPath func(string) (string, error)
}

// NewBinaryChecker creates a checker for bin.
func NewBinaryChecker(name, bin string) *BinaryChecker {
	return &BinaryChecker{name: name, bin: bin, lookPath: exec.LookPath}
}

func (c *BinaryChecker) Name() string { return c.name }

func (c *BinaryChecker) Check(_ context.Context) CheckResult {
	resolved, err := c.lookPath(c.bin)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   err.Error(),
			Message: c.bin,
		}
	}
	return CheckResult{Status: StatusHealthy, Message: resolved}
}

// PingChecker wraps a connectivity probe such as a Redis PING.
type PingChecker struct {
	name    string
	timeout time.Duration
	ping    func(ctx context.Context) error
}

// NewPingChecker creates a checker calling ping with timeout.
func NewPingChecker(name string, timeout time.Duration, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, timeout: timeout, ping: ping}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if c.ping == nil {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}

// CapacityChecker reports degraded once the active stream count reaches a soft limit.
type CapacityChecker struct {
	count func() int
	limit int
}

// NewCapacityChecker creates a checker; limit <= 0 disables the threshold.
func NewCapacityChecker(count func() int, limit int) *CapacityChecker {
	return &CapacityChecker{count: count, limit: limit}
}

func (c *CapacityChecker) Name() string { return "streams" }

func (c *CapacityChecker) Check(_ context.Context) CheckResult {
	n := c.count()
	if c.limit > 0 && n >= c.limit {
		return CheckResult{Status: StatusDegraded, Message: "stream soft limit reached"}
	}
	return CheckResult{Status: StatusHealthy}
}
