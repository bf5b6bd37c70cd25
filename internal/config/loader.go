// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every env key consulted, for startup diagnostics.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseString(EnvPrefix+key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseInt(EnvPrefix+key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseBool(EnvPrefix+key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseDuration(EnvPrefix+key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[EnvPrefix+key] = struct{}{}
	return ParseFloat(EnvPrefix+key, defaultVal)
}

// Load builds the configuration: defaults, then the file (strict), then
// environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	}

	l.mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Unknown fields are an error.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Server.ListenAddr = l.envString("LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.ReadHeaderTimeout = l.envDuration("READ_HEADER_TIMEOUT", cfg.Server.ReadHeaderTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.RateLimitRPS = l.envInt("RATE_LIMIT_RPS", cfg.Server.RateLimitRPS)

	cfg.Log.Level = l.envString("LOG_LEVEL", cfg.Log.Level)

	cfg.FFmpeg.Bin = l.envString("FFMPEG_BIN", cfg.FFmpeg.Bin)
	cfg.FFmpeg.FPS = l.envInt("FFMPEG_FPS", cfg.FFmpeg.FPS)
	cfg.FFmpeg.Quality = l.envInt("FFMPEG_QUALITY", cfg.FFmpeg.Quality)
	cfg.FFmpeg.LogLevel = l.envString("FFMPEG_LOGLEVEL", cfg.FFmpeg.LogLevel)

	cfg.Relay.HealthInterval = l.envDuration("HEALTH_INTERVAL", cfg.Relay.HealthInterval)
	cfg.Relay.StallPause = l.envDuration("STALL_PAUSE", cfg.Relay.StallPause)
	cfg.Relay.SignalTimeout = l.envDuration("SIGNAL_TIMEOUT", cfg.Relay.SignalTimeout)
	cfg.Relay.GraceTimeout = l.envDuration("GRACE_TIMEOUT", cfg.Relay.GraceTimeout)
	cfg.Relay.PublishTimeout = l.envDuration("PUBLISH_TIMEOUT", cfg.Relay.PublishTimeout)
	cfg.Relay.BufferCeiling = l.envInt("BUFFER_CEILING", cfg.Relay.BufferCeiling)

	cfg.Bus.Backend = l.envString("BUS_BACKEND", cfg.Bus.Backend)
	cfg.Bus.Buffer = l.envInt("BUS_BUFFER", cfg.Bus.Buffer)
	cfg.Bus.RedisAddr = l.envString("REDIS_ADDR", cfg.Bus.RedisAddr)

	cfg.Telemetry.Enabled = l.envBool("TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}
