// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "camrelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Default()
	want.Version = "v1.2.3"
	assert.Equal(t, want, cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: "127.0.0.1:9000"
ffmpeg:
  fps: 15
  quality: 3
relay:
  health_interval: 2s
bus:
  backend: redis
  redis_addr: "redis:6379"
`)

	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, 15, cfg.FFmpeg.FPS)
	assert.Equal(t, 3, cfg.FFmpeg.Quality)
	assert.Equal(t, 2*time.Second, cfg.Relay.HealthInterval)
	assert.Equal(t, BusRedis, cfg.Bus.Backend)
	assert.Equal(t, "redis:6379", cfg.Bus.RedisAddr)
	// untouched keys keep defaults
	assert.Equal(t, 3*time.Second, cfg.Relay.GraceTimeout)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Bin)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
ffmpeg:
  framerate: 10
`)
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n---\nlog:\n  level: info\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsNonYAMLExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camrelay.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML supported")
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Relay, cfg.Relay)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "ffmpeg:\n  fps: 15\n")
	t.Setenv("CAMRELAY_FFMPEG_FPS", "25")
	t.Setenv("CAMRELAY_GRACE_TIMEOUT", "500ms")
	t.Setenv("CAMRELAY_TELEMETRY_ENABLED", "yes")
	t.Setenv("CAMRELAY_TELEMETRY_SAMPLING_RATE", "0.25")
	t.Setenv("CAMRELAY_LOG_LEVEL", "debug")

	l := NewLoader(path, "dev")
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.FFmpeg.FPS)
	assert.Equal(t, 500*time.Millisecond, cfg.Relay.GraceTimeout)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 0.25, cfg.Telemetry.SamplingRate, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, l.ConsumedEnvKeys, "CAMRELAY_FFMPEG_FPS")
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("CAMRELAY_FFMPEG_QUALITY", "high")
	t.Setenv("CAMRELAY_STALL_PAUSE", "soon")
	t.Setenv("CAMRELAY_TELEMETRY_ENABLED", "maybe")

	cfg, err := NewLoader("", "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, Default().FFmpeg.Quality, cfg.FFmpeg.Quality)
	assert.Equal(t, Default().Relay.StallPause, cfg.Relay.StallPause)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantMsg string
	}{
		{"fps too high", func(c *AppConfig) { c.FFmpeg.FPS = 120 }, "ffmpeg.fps"},
		{"quality too low", func(c *AppConfig) { c.FFmpeg.Quality = 1 }, "ffmpeg.quality"},
		{"empty bin", func(c *AppConfig) { c.FFmpeg.Bin = " " }, "ffmpeg.bin"},
		{"zero grace", func(c *AppConfig) { c.Relay.GraceTimeout = 0 }, "relay.grace_timeout"},
		{"tiny ceiling", func(c *AppConfig) { c.Relay.BufferCeiling = 10 }, "relay.buffer_ceiling"},
		{"unknown bus", func(c *AppConfig) { c.Bus.Backend = "kafka" }, "bus.backend"},
		{"redis without addr", func(c *AppConfig) { c.Bus.Backend = BusRedis; c.Bus.RedisAddr = "" }, "bus.redis_addr"},
		{"bad log level", func(c *AppConfig) { c.Log.Level = "loud" }, "log.level"},
		{"bad exporter", func(c *AppConfig) { c.Telemetry.Enabled = true; c.Telemetry.Exporter = "zipkin" }, "telemetry.exporter"},
		{"negative rate limit", func(c *AppConfig) { c.Server.RateLimitRPS = -1 }, "rate_limit_rps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	require.NoError(t, Validate(Default()))
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "camrelay.yaml")
	require.NoError(t, WriteFile(path, Default(), false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	err = WriteFile(path, Default(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, WriteFile(path, Default(), true))
}
