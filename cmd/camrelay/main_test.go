// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/camrelay/internal/bus"
	"github.com/ManuGH/camrelay/internal/config"
)

func TestConfigInitValidateDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camrelay.yaml")
	var stdout, stderr bytes.Buffer

	require.Equal(t, 0, runConfig([]string{"init", "-f", path}, &stdout, &stderr), stderr.String())
	assert.FileExists(t, path)

	stderr.Reset()
	assert.Equal(t, 1, runConfig([]string{"init", "-f", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "already exists")
	assert.Equal(t, 0, runConfig([]string{"init", "-f", path, "--force"}, &stdout, &stderr))

	stdout.Reset()
	require.Equal(t, 0, runConfig([]string{"validate", "-f", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "is valid")

	stdout.Reset()
	require.Equal(t, 0, runConfig([]string{"dump", "-f", path, "--format=json"}, &stdout, &stderr))
	var dumped config.AppConfig
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &dumped))
	assert.Equal(t, config.Default().FFmpeg, dumped.FFmpeg)
}

func TestConfigValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ffmpeg:\n  fps: 500\n"), 0o600))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, runConfig([]string{"validate", "-f", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "ffmpeg.fps")

	assert.Equal(t, 2, runConfig([]string{"validate"}, &stdout, &stderr))
	assert.Equal(t, 2, runConfig([]string{"frobnicate"}, &stdout, &stderr))
}

func TestBuildBusMemory(t *testing.T) {
	b, checker, closeFn, err := buildBus(context.Background(), config.BusConfig{Backend: config.BusMemory, Buffer: 4})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &bus.MemoryBus{}, b)
	assert.Nil(t, checker)
}

func TestBuildBusRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	b, checker, closeFn, err := buildBus(context.Background(), config.BusConfig{Backend: config.BusRedis, Buffer: 4, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &bus.RedisBus{}, b)
	require.NotNil(t, checker)
	assert.Equal(t, "redis", checker.Name())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, b.Publish(ctx, "connection-status::cam1", "connected"))
}

func TestBuildBusRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, _, err := buildBus(context.Background(), config.BusConfig{Backend: config.BusRedis, Buffer: 4, RedisAddr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis bus")
}

func TestRelayOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := relayOptions(cfg.Relay)
	assert.Equal(t, cfg.Relay.HealthInterval, opts.HealthInterval)
	assert.Equal(t, cfg.Relay.GraceTimeout, opts.GraceTimeout)
	assert.Equal(t, cfg.Relay.BufferCeiling, opts.BufferCeiling)

	reg := buildRegistry(cfg, bus.NewMemoryBus(1))
	assert.Zero(t, reg.Len())
}

func TestHealthcheckCLI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/readyz" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	assert.Equal(t, 0, runHealthcheckCLI([]string{"-mode", "live", "-addr", srv.URL}))
	assert.Equal(t, 1, runHealthcheckCLI([]string{"-addr", srv.URL}))
}
