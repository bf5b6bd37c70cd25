// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/camrelay/internal/bus"
	"github.com/ManuGH/camrelay/internal/config"
	"github.com/ManuGH/camrelay/internal/health"
	"github.com/ManuGH/camrelay/internal/relay"
	"github.com/ManuGH/camrelay/internal/relay/transcoder"
)

// buildBus selects the event bus backend. The redis backend is pinged up
// front so a wrong address fails startup instead of every publish.
func buildBus(ctx context.Context, cfg config.BusConfig) (bus.Bus, health.Checker, func(), error) {
	switch cfg.Backend {
	case config.BusRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rb := bus.NewRedisBus(client, cfg.Buffer)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rb.Ping(pctx); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("connect redis bus at %s: %w", cfg.RedisAddr, err)
		}
		checker := health.NewPingChecker("redis", 2*time.Second, rb.Ping)
		return rb, checker, func() { _ = client.Close() }, nil
	default:
		return bus.NewMemoryBus(cfg.Buffer), nil, func() {}, nil
	}
}

func relayOptions(cfg config.RelayConfig) relay.Options {
	return relay.Options{
		HealthInterval: cfg.HealthInterval,
		StallPause:     cfg.StallPause,
		SignalTimeout:  cfg.SignalTimeout,
		GraceTimeout:   cfg.GraceTimeout,
		PublishTimeout: cfg.PublishTimeout,
		BufferCeiling:  cfg.BufferCeiling,
	}
}

func buildRegistry(cfg config.AppConfig, pub relay.Publisher) *relay.Registry {
	launcher := transcoder.NewLauncher(cfg.FFmpeg.Bin, transcoder.Profile{
		FPS:      cfg.FFmpeg.FPS,
		Quality:  cfg.FFmpeg.Quality,
		LogLevel: cfg.FFmpeg.LogLevel,
	})
	return relay.NewRegistry(relay.FFmpegLauncher(launcher), pub, relayOptions(cfg.Relay))
}
