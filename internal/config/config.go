// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the camrelay daemon configuration.
//
// Precedence is ENV > file > defaults. The file is YAML, parsed strictly:
// unknown keys are rejected.
package config

import (
	"time"
)

// AppConfig is the complete daemon configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	FFmpeg    FFmpegConfig    `yaml:"ffmpeg"`
	Relay     RelayConfig     `yaml:"relay"`
	Bus       BusConfig       `yaml:"bus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	ListenAddr        string        `yaml:"listen_addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	RateLimitRPS      int           `yaml:"rate_limit_rps"` // per client IP; 0 disables
}

// LogConfig covers the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// FFmpegConfig covers the transcoder binary and its output profile.
type FFmpegConfig struct {
	Bin      string `yaml:"bin"`
	FPS      int    `yaml:"fps"`
	Quality  int    `yaml:"quality"`
	LogLevel string `yaml:"loglevel"`
}

// RelayConfig covers session timing.
type RelayConfig struct {
	HealthInterval time.Duration `yaml:"health_interval"`
	StallPause     time.Duration `yaml:"stall_pause"`
	SignalTimeout  time.Duration `yaml:"signal_timeout"`
	GraceTimeout   time.Duration `yaml:"grace_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	BufferCeiling  int           `yaml:"buffer_ceiling"`
}

// BusConfig selects the event bus backend.
type BusConfig struct {
	Backend   string `yaml:"backend"` // memory | redis
	Buffer    int    `yaml:"buffer"`
	RedisAddr string `yaml:"redis_addr"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Bus backends.
const (
	BusMemory = "memory"
	BusRedis  = "redis"
)

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			ListenAddr:        ":8089",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			RateLimitRPS:      20,
		},
		Log: LogConfig{Level: "info"},
		FFmpeg: FFmpegConfig{
			Bin:      "ffmpeg",
			FPS:      10,
			Quality:  5,
			LogLevel: "error",
		},
		Relay: RelayConfig{
			HealthInterval: 5 * time.Second,
			StallPause:     time.Second,
			SignalTimeout:  5 * time.Second,
			GraceTimeout:   3 * time.Second,
			PublishTimeout: 250 * time.Millisecond,
			BufferCeiling:  1_000_000,
		},
		Bus: BusConfig{
			Backend:   BusMemory,
			Buffer:    64,
			RedisAddr: "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
