// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"

	"github.com/ManuGH/camrelay/internal/config"
	"github.com/ManuGH/camrelay/internal/log"
)

// PerformStartupChecks validates the environment before the server starts.
// A missing transcoder is fatal: no stream could ever be started.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig, checkers ...Checker) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	all := append([]Checker{NewBinaryChecker("ffmpeg", cfg.FFmpeg.Bin)}, checkers...)
	for _, c := range all {
		res := c.Check(ctx)
		if res.Status == StatusUnhealthy {
			return fmt.Errorf("startup check %s failed: %s", c.Name(), res.Error)
		}
		logger.Info().Str("check", c.Name()).Str(log.FieldStatus, string(res.Status)).Str("detail", res.Message).Msg("startup check passed")
	}
	return nil
}
