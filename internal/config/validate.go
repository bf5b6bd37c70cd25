// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks cfg and reports all problems at once.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		add("server.listen_addr must not be empty")
	}
	if cfg.Server.RateLimitRPS < 0 {
		add("server.rate_limit_rps must be >= 0, got %d", cfg.Server.RateLimitRPS)
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level %q: %v", cfg.Log.Level, err)
	}

	if strings.TrimSpace(cfg.FFmpeg.Bin) == "" {
		add("ffmpeg.bin must not be empty")
	}
	if cfg.FFmpeg.FPS < 1 || cfg.FFmpeg.FPS > 60 {
		add("ffmpeg.fps must be within 1..60, got %d", cfg.FFmpeg.FPS)
	}
	if cfg.FFmpeg.Quality < 2 || cfg.FFmpeg.Quality > 31 {
		add("ffmpeg.quality must be within 2..31, got %d", cfg.FFmpeg.Quality)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"relay.health_interval", cfg.Relay.HealthInterval},
		{"relay.stall_pause", cfg.Relay.StallPause},
		{"relay.signal_timeout", cfg.Relay.SignalTimeout},
		{"relay.grace_timeout", cfg.Relay.GraceTimeout},
		{"relay.publish_timeout", cfg.Relay.PublishTimeout},
	} {
		if d.value <= 0 {
			add("%s must be positive, got %s", d.name, d.value)
		}
	}
	if cfg.Relay.BufferCeiling < 1024 {
		add("relay.buffer_ceiling must be at least 1024 bytes, got %d", cfg.Relay.BufferCeiling)
	}

	switch cfg.Bus.Backend {
	case BusMemory:
	case BusRedis:
		if strings.TrimSpace(cfg.Bus.RedisAddr) == "" {
			add("bus.redis_addr is required for the redis backend")
		}
	default:
		add("bus.backend must be %q or %q, got %q", BusMemory, BusRedis, cfg.Bus.Backend)
	}
	if cfg.Bus.Buffer < 1 {
		add("bus.buffer must be >= 1, got %d", cfg.Bus.Buffer)
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Exporter != "grpc" && cfg.Telemetry.Exporter != "http" {
			add("telemetry.exporter must be grpc or http, got %q", cfg.Telemetry.Exporter)
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			add("telemetry.sampling_rate must be within 0..1, got %v", cfg.Telemetry.SamplingRate)
		}
	}

	return errors.Join(errs...)
}
